/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"sync"

	"github.com/attestify/vc-framework-go/pkg/internal/common/logging/metadata"
	"github.com/attestify/vc-framework-go/pkg/internal/common/logging/modlog"
	spi "github.com/attestify/vc-framework-go/spi/log"
)

// Level is an alias of spi.Level.
type Level = spi.Level

// Log levels.
const (
	CRITICAL = spi.CRITICAL
	ERROR    = spi.ERROR
	WARNING  = spi.WARNING
	INFO     = spi.INFO
	DEBUG    = spi.DEBUG
)

var (
	loggerProviderInstance spi.LoggerProvider //nolint:gochecknoglobals
	loggerProviderOnce     sync.Once          //nolint:gochecknoglobals
)

// Log is an implementation of the spi.Logger interface.
// It encapsulates a default or custom logger to provide module and level based logging.
type Log struct {
	instance spi.Logger
	module   string
	once     sync.Once
}

// New creates and returns a Logger implementation based on given module name.
// note: the underlying logger instance is lazily initialized on first use.
// To use your own logger implementation provide a logger provider in 'Initialize()'
// before logging any line. If 'Initialize()' is not called before logging any line
// then the default logging implementation is used.
func New(module string) *Log {
	return &Log{module: module}
}

// Initialize sets the custom logger provider. It can only be set once for the
// lifetime of the process; subsequent calls are ignored.
func Initialize(l spi.LoggerProvider) {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &modlogProvider{custom: l}
	})
}

// Fatalf calls Fatalf function of underlying logger.
func (l *Log) Fatalf(msg string, args ...interface{}) {
	l.logger().Fatalf(msg, args...)
}

// Panicf calls Panicf function of underlying logger.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.logger().Panicf(msg, args...)
}

// Debugf calls Debugf function of underlying logger.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.logger().Debugf(msg, args...)
}

// Infof calls Infof function of underlying logger.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.logger().Infof(msg, args...)
}

// Warnf calls Warnf function of underlying logger.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.logger().Warnf(msg, args...)
}

// Errorf calls Errorf function of underlying logger.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.logger().Errorf(msg, args...)
}

func (l *Log) logger() spi.Logger {
	l.once.Do(func() {
		l.instance = loggerProvider().GetLogger(l.module)
	})

	return l.instance
}

// SetLevel sets the log level for given module.
// If not set, the default logging level is info.
func SetLevel(module string, level Level) {
	metadata.SetLevel(module, metadata.Level(level))
}

// GetLevel returns the log level for given module.
func GetLevel(module string) Level {
	return Level(metadata.GetLevel(module))
}

// IsEnabledFor checks if given log level is enabled for given module.
func IsEnabledFor(module string, level Level) bool {
	return metadata.IsEnabledFor(module, metadata.Level(level))
}

// ParseLevel returns the log level from a string representation.
func ParseLevel(level string) (Level, error) {
	l, err := metadata.ParseLevel(level)

	return Level(l), err
}

// ShowCallerInfo enables caller info in log lines for given module and level.
// note: depending on the custom logger provider, caller info may not be available.
func ShowCallerInfo(module string, level Level) {
	metadata.ShowCallerInfo(module, metadata.Level(level))
}

// HideCallerInfo disables caller info in log lines for given module and level.
func HideCallerInfo(module string, level Level) {
	metadata.HideCallerInfo(module, metadata.Level(level))
}

func loggerProvider() spi.LoggerProvider {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &modlogProvider{}
	})

	return loggerProviderInstance
}

// modlogProvider is a moduled logger provider wrapping the custom provider,
// or the default logger if no custom provider was given.
type modlogProvider struct {
	custom spi.LoggerProvider
}

// GetLogger returns a moduled logger implementation.
func (p *modlogProvider) GetLogger(module string) spi.Logger {
	var logger spi.Logger
	if p.custom != nil {
		logger = p.custom.GetLogger(module)
	} else {
		logger = modlog.NewDefLog(module)
	}

	return modlog.NewModLog(logger, module)
}
