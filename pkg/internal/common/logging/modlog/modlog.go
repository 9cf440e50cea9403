/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modlog

import (
	"github.com/attestify/vc-framework-go/pkg/internal/common/logging/metadata"
	spi "github.com/attestify/vc-framework-go/spi/log"
)

// NewModLog returns a moduled wrapper over the given logger implementation.
// It adds module based level filtering on top of the provider logger.
func NewModLog(logger spi.Logger, module string) spi.Logger {
	return &modLog{logger: logger, module: module}
}

// modLog is a moduled wrapper for an spi.Logger implementation.
type modLog struct {
	logger spi.Logger
	module string
}

// Fatalf calls underlying logger.Fatalf.
func (m *modLog) Fatalf(format string, args ...interface{}) {
	m.logger.Fatalf(format, args...)
}

// Panicf calls underlying logger.Panicf.
func (m *modLog) Panicf(format string, args ...interface{}) {
	m.logger.Panicf(format, args...)
}

// Debugf calls underlying logger.Debugf if DEBUG level is enabled.
func (m *modLog) Debugf(format string, args ...interface{}) {
	if !metadata.IsEnabledFor(m.module, metadata.DEBUG) {
		return
	}

	m.logger.Debugf(format, args...)
}

// Infof calls underlying logger.Infof if INFO level is enabled.
func (m *modLog) Infof(format string, args ...interface{}) {
	if !metadata.IsEnabledFor(m.module, metadata.INFO) {
		return
	}

	m.logger.Infof(format, args...)
}

// Warnf calls underlying logger.Warnf if WARNING level is enabled.
func (m *modLog) Warnf(format string, args ...interface{}) {
	if !metadata.IsEnabledFor(m.module, metadata.WARNING) {
		return
	}

	m.logger.Warnf(format, args...)
}

// Errorf calls underlying logger.Errorf if ERROR level is enabled.
func (m *modLog) Errorf(format string, args ...interface{}) {
	if !metadata.IsEnabledFor(m.module, metadata.ERROR) {
		return
	}

	m.logger.Errorf(format, args...)
}
