/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"errors"
	"strings"
	"sync"
)

// Level defines all available log levels for logging messages.
type Level int

// Log levels.
// note: the constants below mirror 'log.Level' to avoid circular references,
// care should be taken before changing them including their order.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO // default logging level
	DEBUG
)

const (
	defaultLogLevel   = INFO
	defaultModuleName = ""
)

var levelNames = []string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG"}

var rwmutex = &sync.RWMutex{}

var levels = newModuledLevels()

var callerInfos = newCallerInfo()

// ParseString returns string representation of given log level.
func ParseString(level Level) string {
	return levelNames[level]
}

// ParseLevel returns the log level from a string representation.
func ParseLevel(level string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, level) {
			return Level(i), nil
		}
	}

	return ERROR, errors.New("logger: invalid log level")
}

// SetLevel sets the log level for given module.
func SetLevel(module string, level Level) {
	rwmutex.Lock()
	defer rwmutex.Unlock()

	levels.SetLevel(module, level)
}

// GetLevel returns the log level for given module.
func GetLevel(module string) Level {
	rwmutex.RLock()
	defer rwmutex.RUnlock()

	return levels.GetLevel(module)
}

// IsEnabledFor returns true if logging is enabled for given module and level.
func IsEnabledFor(module string, level Level) bool {
	rwmutex.RLock()
	defer rwmutex.RUnlock()

	return levels.IsEnabledFor(module, level)
}

// ShowCallerInfo enables caller info for given module and level.
func ShowCallerInfo(module string, level Level) {
	rwmutex.Lock()
	defer rwmutex.Unlock()

	callerInfos.ShowCallerInfo(module, level)
}

// HideCallerInfo disables caller info for given module and level.
func HideCallerInfo(module string, level Level) {
	rwmutex.Lock()
	defer rwmutex.Unlock()

	callerInfos.HideCallerInfo(module, level)
}

// IsCallerInfoEnabled returns true if caller info is enabled for given module and level.
func IsCallerInfoEnabled(module string, level Level) bool {
	rwmutex.RLock()
	defer rwmutex.RUnlock()

	return callerInfos.IsCallerInfoEnabled(module, level)
}

func newModuledLevels() *moduleLevels {
	return &moduleLevels{levels: make(map[string]Level)}
}

// moduleLevels maintains log levels based on modules.
type moduleLevels struct {
	levels map[string]Level
}

// GetLevel returns the log level for given module.
func (l *moduleLevels) GetLevel(module string) Level {
	level, exists := l.levels[module]
	if !exists {
		level, exists = l.levels[defaultModuleName]
		// no configuration exists, default to info
		if !exists {
			return defaultLogLevel
		}
	}

	return level
}

// SetLevel sets the log level for given module.
func (l *moduleLevels) SetLevel(module string, level Level) {
	l.levels[module] = level
}

// IsEnabledFor returns true if logging is enabled for given module and level.
func (l *moduleLevels) IsEnabledFor(module string, level Level) bool {
	return level <= l.GetLevel(module)
}

func newCallerInfo() *callerInfo {
	return &callerInfo{
		info: map[callerInfoKey]bool{
			{defaultModuleName, CRITICAL}: true,
			{defaultModuleName, ERROR}:    true,
			{defaultModuleName, WARNING}:  true,
			{defaultModuleName, INFO}:     true,
			{defaultModuleName, DEBUG}:    true,
		},
	}
}

type callerInfoKey struct {
	module string
	level  Level
}

// callerInfo maintains module-level based caller info settings.
type callerInfo struct {
	info map[callerInfoKey]bool
}

// ShowCallerInfo enables caller info for given module and level.
func (l *callerInfo) ShowCallerInfo(module string, level Level) {
	l.info[callerInfoKey{module, level}] = true
}

// HideCallerInfo disables caller info for given module and level.
func (l *callerInfo) HideCallerInfo(module string, level Level) {
	l.info[callerInfoKey{module, level}] = false
}

// IsCallerInfoEnabled returns caller info setting for given module and level.
func (l *callerInfo) IsCallerInfoEnabled(module string, level Level) bool {
	show, exists := l.info[callerInfoKey{module, level}]
	if !exists {
		// no configuration exists, default to 'default' module setting
		return l.info[callerInfoKey{defaultModuleName, level}]
	}

	return show
}
