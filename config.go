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

// Package cnbkit implements the execution contract for buildpacks: the detect and
// build phase state machines, their filesystem inputs and outputs, and the process
// exit-code protocol.
package cnbkit

import (
	"os"

	"github.com/cnbtools/cnbkit/env"
	"github.com/cnbtools/cnbkit/internal"
	"github.com/cnbtools/cnbkit/log"
)

const (
	// EnvBuildpackDirectory is the environment variable holding the buildpack directory.
	EnvBuildpackDirectory = "CNB_BUILDPACK_DIR"

	// EnvStackID is the environment variable holding the stack id.
	EnvStackID = "CNB_STACK_ID"
)

// ExitHandler is the contract for types that handle the phase outcome protocol.
type ExitHandler interface {
	// Error reports an unrecoverable error and exits nonzero.
	Error(error)

	// Fail exits with the code reserved for detection failure.
	Fail()

	// Pass exits with success.
	Pass()
}

// TOMLWriter is the contract for types that write specification documents.
type TOMLWriter interface {
	Write(path string, value interface{}) error
}

// EnvironmentWriter is the contract for types that write a layer environment directory.
type EnvironmentWriter interface {
	Write(path string, environment map[string]string) error
}

// Config is the configuration of a phase invocation.
type Config struct {
	arguments         []string
	environmentWriter EnvironmentWriter
	exitHandler       ExitHandler
	tomlWriter        TOMLWriter
	logger            log.Logger
	precedence        env.Precedence
}

// Option is a function for configuring a phase invocation.
type Option func(config Config) Config

// WithArguments creates an Option that sets the process arguments.
func WithArguments(arguments []string) Option {
	return func(config Config) Config {
		config.arguments = arguments
		return config
	}
}

// WithEnvironmentWriter creates an Option that sets an EnvironmentWriter implementation.
func WithEnvironmentWriter(environmentWriter EnvironmentWriter) Option {
	return func(config Config) Config {
		config.environmentWriter = environmentWriter
		return config
	}
}

// WithExitHandler creates an Option that sets an ExitHandler implementation.
func WithExitHandler(exitHandler ExitHandler) Option {
	return func(config Config) Config {
		config.exitHandler = exitHandler
		return config
	}
}

// WithTOMLWriter creates an Option that sets a TOMLWriter implementation.
func WithTOMLWriter(tomlWriter TOMLWriter) Option {
	return func(config Config) Config {
		config.tomlWriter = tomlWriter
		return config
	}
}

// WithLogger creates an Option that sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(config Config) Config {
		config.logger = logger
		return config
	}
}

// WithEnvironmentPrecedence creates an Option that sets the precedence between
// platform-scoped and buildpack-scoped environment entries.
func WithEnvironmentPrecedence(precedence env.Precedence) Option {
	return func(config Config) Config {
		config.precedence = precedence
		return config
	}
}

// NewConfig creates the default configuration, modified by options.
func NewConfig(options ...Option) Config {
	config := Config{
		arguments:         os.Args,
		environmentWriter: internal.EnvironmentWriter{},
		exitHandler:       internal.NewExitHandler(),
		tomlWriter:        internal.TOMLWriter{},
		logger:            log.New(os.Stdout),
	}

	for _, option := range options {
		config = option(config)
	}

	return config
}
