/*
 * Copyright 2018-2020 the original author or authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log provides the logging capability injected into the lifecycle engine
// and the packaging assembler.  It is a value, not process-global state.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger logs messages to an info writer and, when enabled, a debug writer.
type Logger struct {
	debug io.Writer
	info  io.Writer
}

// Option is a function that configures a Logger.
type Option func(Logger) Logger

// WithDebug configures the debug writer.
func WithDebug(writer io.Writer) Option {
	return func(logger Logger) Logger {
		logger.debug = writer
		return logger
	}
}

// NewWithOptions creates a Logger writing info messages to the given writer,
// configured with options.
func NewWithOptions(writer io.Writer, options ...Option) Logger {
	l := Logger{info: writer}

	for _, option := range options {
		l = option(l)
	}

	return l
}

// New creates a Logger writing info messages to the given writer.  Debug logging is
// enabled when $BP_DEBUG is set or $BP_LOG_LEVEL is "debug".
func New(writer io.Writer) Logger {
	var options []Option

	if _, ok := os.LookupEnv("BP_DEBUG"); ok {
		options = append(options, WithDebug(writer))
	} else if strings.EqualFold(os.Getenv("BP_LOG_LEVEL"), "debug") {
		options = append(options, WithDebug(writer))
	}

	return NewWithOptions(writer, options...)
}

// NewDiscard creates a Logger that discards all messages.  Useful in testing.
func NewDiscard() Logger {
	return Logger{info: io.Discard, debug: io.Discard}
}

// Debug writes a message to the configured debug writer.
func (l Logger) Debug(a ...interface{}) {
	if !l.IsDebugEnabled() {
		return
	}

	l.print(l.debug, fmt.Sprint(a...))
}

// Debugf formats according to a format specifier and writes to the debug writer.
func (l Logger) Debugf(format string, a ...interface{}) {
	if !l.IsDebugEnabled() {
		return
	}

	l.print(l.debug, fmt.Sprintf(format, a...))
}

// Info writes a message to the configured info writer.
func (l Logger) Info(a ...interface{}) {
	if !l.IsInfoEnabled() {
		return
	}

	l.print(l.info, fmt.Sprint(a...))
}

// Infof formats according to a format specifier and writes to the info writer.
func (l Logger) Infof(format string, a ...interface{}) {
	if !l.IsInfoEnabled() {
		return
	}

	l.print(l.info, fmt.Sprintf(format, a...))
}

// InfoWriter returns the configured info writer.
func (l Logger) InfoWriter() io.Writer {
	return l.info
}

// DebugWriter returns the configured debug writer.
func (l Logger) DebugWriter() io.Writer {
	return l.debug
}

// IsDebugEnabled indicates whether debug logging is enabled.
func (l Logger) IsDebugEnabled() bool {
	return l.debug != nil
}

// IsInfoEnabled indicates whether info logging is enabled.
func (l Logger) IsInfoEnabled() bool {
	return l.info != nil
}

func (l Logger) print(writer io.Writer, s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}

	_, _ = fmt.Fprint(writer, s)
}
