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

	"github.com/cnbtools/cnbkit/cnb"
	"github.com/cnbtools/cnbkit/log"
)

// DetectContext contains the inputs to detection.
type DetectContext struct {

	// ApplicationPath is the location of the application source code as provided
	// by the lifecycle.
	ApplicationPath string

	// Buildpack is metadata about the buildpack, from buildpack.toml.
	Buildpack cnb.Buildpack

	// Logger is the way to write messages to the end user.
	Logger log.Logger

	// Platform is the contents of the platform.
	Platform Platform

	// StackID is the ID of the stack.
	StackID string
}

// DetectResult contains the results of detection.
type DetectResult struct {

	// Pass indicates whether detection has passed.
	Pass bool

	// Plans are the build plans contributed by the buildpack.
	Plans []cnb.BuildPlan
}

// DetectFunc takes a context and returns a result, performing buildpack detect behaviors.
type DetectFunc func(context DetectContext) (DetectResult, error)

// Detect is called by the main function of a buildpack, for detection.  It receives
// the platform directory and build plan path as positional arguments, invokes the
// detect function, and maps the outcome to the exit-code protocol: Pass writes the
// plan and exits 0, Fail exits 100 without writing a plan, an error exits 1.
func Detect(detect DetectFunc, options ...Option) {
	config := NewConfig(options...)

	if len(config.arguments) != 3 {
		config.exitHandler.Error(fmt.Errorf("expected 2 arguments and received %d", len(config.arguments)-1))
		return
	}

	var (
		err error
		ok  bool
	)
	ctx := DetectContext{Logger: config.logger}

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

	if ctx.Platform, err = NewPlatform(config.arguments[1]); err != nil {
		config.exitHandler.Error(err)
		return
	}
	if config.logger.IsDebugEnabled() {
		config.logger.Debug(PlatformFormatter(ctx.Platform))
	}

	buildPlanPath := config.arguments[2]

	if ctx.StackID, ok = os.LookupEnv(EnvStackID); !ok {
		config.exitHandler.Error(fmt.Errorf("%s not set", EnvStackID))
		return
	}
	config.logger.Debugf("Stack: %s", ctx.StackID)

	result, err := detect(ctx)
	if err != nil {
		config.exitHandler.Error(err)
		return
	}
	config.logger.Debugf("Result: %+v", result)

	if !result.Pass {
		// an expected, quiet outcome: the orchestrator simply moves on
		config.logger.Info("Detection did not pass")
		config.exitHandler.Fail()
		return
	}

	if len(result.Plans) > 0 {
		var plans cnb.BuildPlans
		plans.BuildPlan = result.Plans[0]
		if len(result.Plans) > 1 {
			plans.Or = result.Plans[1:]
		}

		config.logger.Debugf("Writing build plans: %s <= %+v", buildPlanPath, plans)
		if err := config.tomlWriter.Write(buildPlanPath, plans); err != nil {
			config.exitHandler.Error(fmt.Errorf("unable to write build plan %s\n%w", buildPlanPath, err))
			return
		}
	}

	config.exitHandler.Pass()
}
