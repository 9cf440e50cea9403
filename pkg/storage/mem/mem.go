/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mem

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	spi "github.com/attestify/vc-framework-go/spi/storage"
)

const (
	expressionTagNameOnlyLength     = 1
	expressionTagNameAndValueLength = 2

	invalidTagName  = `"%s" is an invalid tag name since it contains one or more ':' characters`
	invalidTagValue = `"%s" is an invalid tag value since it contains one or more ':' characters`
)

var (
	errEmptyKey                     = errors.New("key cannot be empty")
	errInvalidQueryExpressionFormat = errors.New("invalid expression format. " +
		"it must be in the following format: TagName:TagValue")
	errIteratorExhausted = errors.New("iterator is exhausted")
)

// Provider represents an in-memory implementation of the spi.Provider interface.
type Provider struct {
	dbs  map[string]*memStore
	lock sync.RWMutex
}

// NewProvider instantiates a new in-memory storage Provider.
func NewProvider() *Provider {
	return &Provider{dbs: make(map[string]*memStore)}
}

// OpenStore opens a store with the given name and returns a handle.
// If the store has never been opened before, then it is created.
// Store names are not case-sensitive.
func (p *Provider) OpenStore(name string) (spi.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("store name cannot be empty")
	}

	storeName := strings.ToLower(name)

	p.lock.Lock()
	defer p.lock.Unlock()

	store := p.dbs[storeName]
	if store == nil {
		newStore := &memStore{name: storeName, db: make(map[string]dbEntry), close: p.removeStore}
		p.dbs[storeName] = newStore

		return newStore, nil
	}

	return store, nil
}

// SetStoreConfig sets the configuration on a store.
// The store must be created prior to calling this method.
// If the store cannot be found, then an error wrapping spi.ErrStoreNotFound will be returned.
func (p *Provider) SetStoreConfig(name string, config spi.StoreConfiguration) error {
	for _, tagName := range config.TagNames {
		if strings.Contains(tagName, ":") {
			return fmt.Errorf(invalidTagName, tagName)
		}
	}

	storeName := strings.ToLower(name)

	p.lock.Lock()
	defer p.lock.Unlock()

	store := p.dbs[storeName]
	if store == nil {
		return spi.ErrStoreNotFound
	}

	store.config = config

	return nil
}

// GetStoreConfig gets the current store configuration.
// If the store cannot be found, then an error wrapping spi.ErrStoreNotFound will be returned.
func (p *Provider) GetStoreConfig(name string) (spi.StoreConfiguration, error) {
	storeName := strings.ToLower(name)

	p.lock.RLock()
	defer p.lock.RUnlock()

	store := p.dbs[storeName]
	if store == nil {
		return spi.StoreConfiguration{}, spi.ErrStoreNotFound
	}

	return store.config, nil
}

// Close closes all stores created under this store provider.
func (p *Provider) Close() error {
	p.lock.RLock()

	openStoresSnapshot := make([]*memStore, len(p.dbs))

	var counter int

	for _, db := range p.dbs {
		openStoresSnapshot[counter] = db
		counter++
	}
	p.lock.RUnlock()

	for _, openStore := range openStoresSnapshot {
		err := openStore.Close()
		if err != nil {
			return fmt.Errorf(`failed to close open store with name "%s": %w`, openStore.name, err)
		}
	}

	return nil
}

func (p *Provider) removeStore(name string) {
	p.lock.Lock()
	defer p.lock.Unlock()

	_, ok := p.dbs[name]
	if ok {
		delete(p.dbs, name)
	}
}

type closer func(storeName string)

type dbEntry struct {
	value []byte
	tags  []spi.Tag
}

type memStore struct {
	name   string
	db     map[string]dbEntry
	config spi.StoreConfiguration
	close  closer
	lock   sync.RWMutex
}

// Put stores the key + value pair along with the (optional) tags.
func (m *memStore) Put(key string, value []byte, tags ...spi.Tag) error {
	if key == "" {
		return errEmptyKey
	}

	if value == nil {
		return errors.New("value cannot be nil")
	}

	for _, tag := range tags {
		if strings.Contains(tag.Name, ":") {
			return fmt.Errorf(invalidTagName, tag.Name)
		}

		if strings.Contains(tag.Value, ":") {
			return fmt.Errorf(invalidTagValue, tag.Value)
		}
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.db[key] = dbEntry{
		value: value,
		tags:  tags,
	}

	return nil
}

// Get fetches the value associated with the given key.
func (m *memStore) Get(k string) ([]byte, error) {
	if k == "" {
		return nil, errEmptyKey
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	entry, ok := m.db[k]
	if !ok {
		return nil, spi.ErrDataNotFound
	}

	return entry.value, nil
}

// GetTags fetches all tags associated with the given key.
func (m *memStore) GetTags(key string) ([]spi.Tag, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	entry, ok := m.db[key]
	if !ok {
		return nil, spi.ErrDataNotFound
	}

	return entry.tags, nil
}

// Query returns all data that satisfies the expression. Expression format: TagName:TagValue.
// If TagValue is not provided, then all data associated with the TagName will be returned.
func (m *memStore) Query(expression string) (spi.Iterator, error) {
	if expression == "" {
		return nil, errInvalidQueryExpressionFormat
	}

	expressionSplit := strings.Split(expression, ":")

	var matchingEntries []entry

	switch len(expressionSplit) {
	case expressionTagNameOnlyLength:
		expressionTagName := expressionSplit[0]

		m.lock.RLock()
		defer m.lock.RUnlock()

		for key, dbEntry := range m.db {
			if tagsContainName(dbEntry.tags, expressionTagName) {
				matchingEntries = append(matchingEntries, entry{
					key:   key,
					value: dbEntry.value,
					tags:  dbEntry.tags,
				})
			}
		}
	case expressionTagNameAndValueLength:
		expressionTagName := expressionSplit[0]
		expressionTagValue := expressionSplit[1]

		m.lock.RLock()
		defer m.lock.RUnlock()

		for key, dbEntry := range m.db {
			if tagsContainNameAndValue(dbEntry.tags, expressionTagName, expressionTagValue) {
				matchingEntries = append(matchingEntries, entry{
					key:   key,
					value: dbEntry.value,
					tags:  dbEntry.tags,
				})
			}
		}
	default:
		return nil, errInvalidQueryExpressionFormat
	}

	return &memIterator{entries: matchingEntries}, nil
}

// Delete deletes the key + value pair (and all tags) associated with key.
func (m *memStore) Delete(k string) error {
	if k == "" {
		return errEmptyKey
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.db, k)

	return nil
}

// Close closes this store object, removing it from the parent provider.
func (m *memStore) Close() error {
	m.close(m.name)

	return nil
}

func tagsContainName(tags []spi.Tag, name string) bool {
	for _, tag := range tags {
		if tag.Name == name {
			return true
		}
	}

	return false
}

func tagsContainNameAndValue(tags []spi.Tag, name, value string) bool {
	for _, tag := range tags {
		if tag.Name == name && tag.Value == value {
			return true
		}
	}

	return false
}

type entry struct {
	key   string
	value []byte
	tags  []spi.Tag
}

type memIterator struct {
	currentIndex int
	currentEntry entry
	entries      []entry
}

// Next moves the pointer to the next entry in the iterator.
func (m *memIterator) Next() (bool, error) {
	if len(m.entries) == m.currentIndex || len(m.entries) == 0 {
		m.entries = nil

		return false, nil
	}

	m.currentEntry = m.entries[m.currentIndex]
	m.currentIndex++

	return true, nil
}

// Key returns the key of the current entry.
func (m *memIterator) Key() (string, error) {
	if len(m.entries) == 0 {
		return "", errIteratorExhausted
	}

	return m.currentEntry.key, nil
}

// Value returns the value of the current entry.
func (m *memIterator) Value() ([]byte, error) {
	if len(m.entries) == 0 {
		return nil, errIteratorExhausted
	}

	return m.currentEntry.value, nil
}

// Tags returns the tags associated with the key of the current entry.
func (m *memIterator) Tags() ([]spi.Tag, error) {
	if len(m.entries) == 0 {
		return nil, errIteratorExhausted
	}

	return m.currentEntry.tags, nil
}

// Close is a no-op for the in-memory iterator.
func (m *memIterator) Close() error {
	return nil
}
