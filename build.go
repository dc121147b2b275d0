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

package cnbkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cnbtools/cnbkit/cnb"
	"github.com/cnbtools/cnbkit/layers"
	"github.com/cnbtools/cnbkit/log"
)

// BuildContext contains the inputs to build.
type BuildContext struct {

	// ApplicationPath is the path to the application.
	ApplicationPath string

	// Buildpack is metadata about the buildpack, from buildpack.toml.
	Buildpack cnb.Buildpack

	// Layers is the layer manager available to the buildpack.
	Layers *layers.Manager

	// Logger is the way to write messages to the end user.
	Logger log.Logger

	// PersistentMetadata is metadata that is persisted even across cache cleaning.
	PersistentMetadata map[string]interface{}

	// Plan is the buildpack plan provided to the buildpack.
	Plan cnb.BuildpackPlan

	// Platform is the contents of the platform.
	Platform Platform

	// StackID is the ID of the stack.
	StackID string
}

// BuildResult contains the results of build.
type BuildResult struct {

	// Layers is the collection of LayerContributors contributed by the buildpack.
	Layers []LayerContributor

	// Labels are the image labels contributed by the buildpack.
	Labels []cnb.Label

	// PersistentMetadata is metadata that is persisted even across cache cleaning.
	PersistentMetadata map[string]interface{}

	// Plan is the refined buildpack plan contributed by the buildpack.
	Plan cnb.BuildpackPlan

	// Processes are the process types contributed by the buildpack.
	Processes []cnb.Process

	// Slices are the application slices contributed by the buildpack.
	Slices []cnb.Slice
}

// LayerContributor is the capability contract for buildpack-supplied layer logic.
// The engine is generic over this contract, never over concrete buildpack types.
type LayerContributor interface {

	// Name is the name of the layer, unique within one invocation.
	Name() string

	// Contribute accepts the layer handle, restored from a prior invocation when
	// one exists, and returns the layer as it should be persisted.
	Contribute(layer layers.Layer) (layers.Layer, error)
}

// BuildFunc is the callback function for buildpack build implementations.
type BuildFunc func(context BuildContext) (BuildResult, error)

// Build is called by the main function of a buildpack, for build.  It receives the
// layers directory, platform directory, and buildpack plan path as positional
// arguments.  On success it commits contributed layers, evicts stale ones, writes
// the launch and store documents, and composes the downstream environment; on any
// error the process exits before any of this phase's documents are written.
func Build(build BuildFunc, options ...Option) {
	config := NewConfig(options...)

	if len(config.arguments) != 4 {
		config.exitHandler.Error(fmt.Errorf("expected 3 arguments and received %d", len(config.arguments)-1))
		return
	}

	var (
		err error
		ok  bool
	)
	ctx := BuildContext{Logger: config.logger}

	ctx.ApplicationPath, err = os.Getwd()
	if err != nil {
		config.exitHandler.Error(fmt.Errorf("unable to get working directory\n%w", err))
		return
	}
	if config.logger.IsDebugEnabled() {
		config.logger.Debug(ApplicationPathFormatter(ctx.ApplicationPath))
	}

	buildpackPath, ok := os.LookupEnv(EnvBuildpackDirectory)
	if !ok {
		config.exitHandler.Error(fmt.Errorf("%s not set", EnvBuildpackDirectory))
		return
	}
	if config.logger.IsDebugEnabled() {
		config.logger.Debug(BuildpackPathFormatter(buildpackPath))
	}

	file := filepath.Join(filepath.Clean(buildpackPath), "buildpack.toml")
	if ctx.Buildpack, err = cnb.ParseBuildpack(file); err != nil {
		config.exitHandler.Error(err)
		return
	}
	config.logger.Debugf("Buildpack: %+v", ctx.Buildpack)

	if err = ctx.Buildpack.ValidateAPI(); err != nil {
		config.exitHandler.Error(err)
		return
	}

	layersPath := config.arguments[1]
	if ctx.Layers, err = layers.NewManager(layersPath); err != nil {
		config.exitHandler.Error(fmt.Errorf("unable to initialize layers %s\n%w", layersPath, err))
		return
	}

	if ctx.Platform, err = NewPlatform(config.arguments[2]); err != nil {
		config.exitHandler.Error(err)
		return
	}
	if config.logger.IsDebugEnabled() {
		config.logger.Debug(PlatformFormatter(ctx.Platform))
	}

	planPath := config.arguments[3]
	if ctx.Plan, err = cnb.ParseBuildpackPlan(planPath); err != nil {
		config.exitHandler.Error(err)
		return
	}
	config.logger.Debugf("Buildpack Plan: %+v", ctx.Plan)

	var store cnb.Store
	file = filepath.Join(layersPath, "store.toml")
	if _, err = toml.DecodeFile(file, &store); err != nil && !os.IsNotExist(err) {
		config.exitHandler.Error(fmt.Errorf("unable to decode persistent metadata %s\n%w", file, err))
		return
	}
	ctx.PersistentMetadata = store.Metadata

	if ctx.StackID, ok = os.LookupEnv(EnvStackID); !ok {
		config.exitHandler.Error(fmt.Errorf("%s not set", EnvStackID))
		return
	}
	config.logger.Debugf("Stack: %s", ctx.StackID)

	result, err := build(ctx)
	if err != nil {
		config.exitHandler.Error(err)
		return
	}
	config.logger.Debugf("Result: %+v", result)

	// validate the result before anything lands on disk; an invalid result must
	// exit without committing a single layer
	launch := cnb.LaunchTOML{
		Labels:    result.Labels,
		Processes: result.Processes,
		Slices:    result.Slices,
	}
	if err = launch.Validate(); err != nil {
		config.exitHandler.Error(err)
		return
	}

	for _, contributor := range result.Layers {
		name := contributor.Name()
		layer, err := ctx.Layers.Layer(name)
		if err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to create layer %s\n%w", name, err))
			return
		}

		layer, err = contributor.Contribute(layer)
		if err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to invoke layer contributor %s\n%w", name, err))
			return
		}

		if err = commitLayer(config, ctx.Layers, layer); err != nil {
			config.exitHandler.Error(err)
			return
		}
	}

	evicted, err := ctx.Layers.EvictUntouched()
	if err != nil {
		config.exitHandler.Error(fmt.Errorf("unable to evict stale layers\n%w", err))
		return
	}
	for _, name := range evicted {
		config.logger.Infof("Removing stale layer %s", name)
	}

	if !launch.IsEmpty() {
		file = filepath.Join(layersPath, "launch.toml")
		config.logger.Debugf("Writing application metadata: %s <= %+v", file, launch)
		if err = config.tomlWriter.Write(file, launch); err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to write application metadata %s\n%w", file, err))
			return
		}
	}

	if len(result.PersistentMetadata) > 0 {
		store = cnb.Store{Metadata: result.PersistentMetadata}
		file = filepath.Join(layersPath, "store.toml")
		config.logger.Debugf("Writing persistent metadata: %s <= %+v", file, store)
		if err = config.tomlWriter.Write(file, store); err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to write persistent metadata %s\n%w", file, err))
			return
		}
	}

	if len(result.Plan.Entries) > 0 {
		config.logger.Debugf("Writing buildpack plan: %s <= %+v", planPath, result.Plan)
		if err = config.tomlWriter.Write(planPath, result.Plan); err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to write buildpack plan %s\n%w", planPath, err))
			return
		}
	}

	composed, err := ComposeEnvironment(ctx.Layers, ctx.Platform.Environment, config.precedence)
	if err != nil {
		config.exitHandler.Error(fmt.Errorf("unable to compose environment\n%w", err))
		return
	}
	config.logger.Debugf("Composed environment: %s", composed)
}

// commitLayer writes a contributed layer's environment directories, profile.d
// scripts, and metadata.  Metadata persistence is atomic; a failure here is fatal
// to the invocation.
func commitLayer(config Config, manager *layers.Manager, layer layers.Layer) error {
	for dir, environment := range map[string]layers.Environment{
		"env.build":  layer.BuildEnvironment,
		"env.launch": layer.LaunchEnvironment,
		"env":        layer.SharedEnvironment,
	} {
		file := filepath.Join(layer.Path, dir)
		config.logger.Debugf("Writing layer %s: %s <= %+v", dir, file, environment)
		if err := config.environmentWriter.Write(file, environment); err != nil {
			return fmt.Errorf("unable to write layer %s %s\n%w", dir, file, err)
		}
	}

	file := filepath.Join(layer.Path, "profile.d")
	config.logger.Debugf("Writing layer profile.d: %s <= %+v", file, layer.Profile)
	if err := config.environmentWriter.Write(file, layer.Profile); err != nil {
		return fmt.Errorf("unable to write layer profile.d %s\n%w", file, err)
	}

	config.logger.Debugf("Writing layer metadata: %s", layer.Name)
	if err := manager.Commit(layer, true); err != nil {
		return fmt.Errorf("unable to write layer metadata %s\n%w", layer.Name, err)
	}

	return nil
}
