/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/attestify/vc-framework-go/pkg/internal/common/logging/metadata"
)

const (
	logLevelFormatter   = "UTC %s-> %s "
	logPrefixFormatter  = " [%s] "
	callerInfoFormatter = "- %s "
)

// NewDefLog returns a default logger implementation backed by the standard Go log package.
func NewDefLog(module string) *DefLog {
	logger := log.New(os.Stdout, fmt.Sprintf(logPrefixFormatter, module), log.Ldate|log.Ltime|log.LUTC)

	return &DefLog{logger: logger, module: module}
}

// DefLog is a standard default logger implementation.
type DefLog struct {
	logger *log.Logger
	module string
}

// Fatalf is a CRITICAL log formatted followed by a call to os.Exit(1).
func (l *DefLog) Fatalf(format string, args ...interface{}) {
	l.logf(metadata.CRITICAL, format, args...)
	os.Exit(1)
}

// Panicf is a CRITICAL log formatted followed by a call to panic().
func (l *DefLog) Panicf(format string, args ...interface{}) {
	l.logf(metadata.CRITICAL, format, args...)
	panic(fmt.Sprintf(format, args...))
}

// Debugf logs verbose messages. Arguments are handled in the manner of fmt.Printf.
func (l *DefLog) Debugf(format string, args ...interface{}) {
	l.logf(metadata.DEBUG, format, args...)
}

// Infof logs general information messages. Arguments are handled in the manner of fmt.Printf.
func (l *DefLog) Infof(format string, args ...interface{}) {
	l.logf(metadata.INFO, format, args...)
}

// Warnf logs possible errors. Arguments are handled in the manner of fmt.Printf.
func (l *DefLog) Warnf(format string, args ...interface{}) {
	l.logf(metadata.WARNING, format, args...)
}

// Errorf logs errors. Arguments are handled in the manner of fmt.Printf.
func (l *DefLog) Errorf(format string, args ...interface{}) {
	l.logf(metadata.ERROR, format, args...)
}

// ChangeOutput changes output destination for the logger.
func (l *DefLog) ChangeOutput(output io.Writer) {
	l.logger.SetOutput(output)
}

func (l *DefLog) logf(level metadata.Level, format string, args ...interface{}) {
	// prefix indicates the caller and the log level, and that the timezone used is UTC
	customPrefix := fmt.Sprintf(logLevelFormatter, l.getCallerInfo(level), metadata.ParseString(level))

	err := l.logger.Output(2, customPrefix+fmt.Sprintf(format, args...)) //nolint:gomnd
	if err != nil {
		fmt.Printf("error from logger.Output %v\n", err)
	}
}

// getCallerInfo returns the caller function name, skipping the frames
// belonging to the logging stack itself.
func (l *DefLog) getCallerInfo(level metadata.Level) string {
	if !metadata.IsCallerInfoEnabled(l.module, level) {
		return ""
	}

	const (
		maxCallers  = 6
		skipCallers = 5
		notFound    = "n/a"
	)

	fpcs := make([]uintptr, maxCallers)

	n := runtime.Callers(skipCallers, fpcs)
	if n == 0 {
		return fmt.Sprintf(callerInfoFormatter, notFound)
	}

	frames := runtime.CallersFrames(fpcs[:n])

	f, _ := frames.Next()
	if f.Func == nil || f.Function == "" {
		return fmt.Sprintf(callerInfoFormatter, notFound)
	}

	_, fnName := filepath.Split(f.Function)

	return fmt.Sprintf(callerInfoFormatter, fnName)
}
