/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"errors"
	standardlog "log"

	spi "github.com/attestify/vc-framework-go/spi/log"
)

var (
	// ErrStoreNotFound is returned when a store is not found.
	ErrStoreNotFound = errors.New("store not found")
	// ErrDataNotFound is returned when data is not found.
	ErrDataNotFound = errors.New("data not found")
)

// StoreConfiguration represents the configuration of a store.
// Currently it's only used for creating indexes in underlying storage databases.
type StoreConfiguration struct {
	// TagNames is a list of Tag names to create indexes on.
	// Tag names cannot contain any ':' characters.
	TagNames []string `json:"tagNames,omitempty"`
}

// Tag represents a Name + Value pair that can be associated with a key + value pair for querying later.
// Tag Names and Values cannot contain any ':' characters.
type Tag struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// Provider represents a storage provider.
type Provider interface {
	// OpenStore opens a Store with the given name and returns it.
	// Store names are not case-sensitive. If name is blank, then an error will be returned.
	OpenStore(name string) (Store, error)

	// SetStoreConfig sets the configuration on a Store. The underlying database uses this
	// to create indexes that make Store.Query calls faster. OpenStore must be called first.
	// If the store cannot be found, an error wrapping ErrStoreNotFound will be returned.
	SetStoreConfig(name string, config StoreConfiguration) error

	// GetStoreConfig gets the current Store configuration.
	// If the store cannot be found, an error wrapping ErrStoreNotFound will be returned.
	GetStoreConfig(name string) (StoreConfiguration, error)

	// Close closes all open Stores in this Provider.
	Close() error
}

// Store represents a storage database.
type Store interface {
	// Put stores the key + value pair along with the (optional) tags.
	// If the key already exists in the database, the value and tags are overwritten silently.
	// If key is empty or value is nil, then an error will be returned.
	Put(key string, value []byte, tags ...Tag) error

	// Get fetches the value associated with the given key.
	// If the key cannot be found, an error wrapping ErrDataNotFound will be returned.
	Get(key string) ([]byte, error)

	// GetTags fetches all tags associated with the given key.
	// If the key cannot be found, an error wrapping ErrDataNotFound will be returned.
	GetTags(key string) ([]Tag, error)

	// Query returns all data that satisfies the expression. Expression format: TagName:TagValue.
	// If TagValue is not provided, then all data associated with the TagName will be returned,
	// regardless of their tag values.
	Query(expression string) (Iterator, error)

	// Delete deletes the key + value pair (and all tags) associated with key.
	Delete(key string) error

	// Close closes this store object, freeing resources.
	// Close can be called repeatedly on the same store without causing an error.
	Close() error
}

// Iterator allows for iteration over a collection of entries in a store.
type Iterator interface {
	// Next moves the pointer to the next entry in the iterator.
	// Note that it must be called before accessing the first entry.
	// It returns false if the iterator is exhausted - this is not considered an error.
	Next() (bool, error)

	// Key returns the key of the current entry.
	Key() (string, error)

	// Value returns the value of the current entry.
	Value() ([]byte, error)

	// Tags returns the tags associated with the key of the current entry.
	Tags() ([]Tag, error)

	// Close closes this iterator object, freeing resources.
	Close() error
}

// Close closes iterator and logs any error that occurs.
// If logger is nil, then the standard Go logger will be used.
func Close(iterator Iterator, logger spi.Logger) {
	errClose := iterator.Close()
	if errClose != nil {
		if logger == nil {
			standardlog.Printf("failed to close iterator: %s", errClose.Error())

			return
		}

		logger.Errorf("failed to close iterator: %s", errClose.Error())
	}
}
