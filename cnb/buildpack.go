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

package cnb

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver"
)

const (
	// MinSupportedAPIVersion is the lowest Buildpack API version this library understands.
	MinSupportedAPIVersion = "0.4"

	// MaxSupportedAPIVersion is the highest Buildpack API version this library understands.
	MaxSupportedAPIVersion = "0.10"
)

// idPattern constrains buildpack and stack ids to lowercase dot-, dash-, underscore- or
// slash-separated segments with no leading or trailing separator.
var idPattern = regexp.MustCompile(`^[a-z0-9]+(?:[./_-][a-z0-9]+)*$`)

// BuildpackInfo is information about the buildpack.
type BuildpackInfo struct {
	// ID is the ID of the buildpack.
	ID string `toml:"id"`

	// Name is the name of the buildpack.
	Name string `toml:"name,omitempty"`

	// Version is the version of the buildpack.
	Version string `toml:"version"`

	// Homepage is the homepage of the buildpack.
	Homepage string `toml:"homepage,omitempty"`

	// ClearEnvironment is whether the environment should be clear of user-configured environment variables.
	ClearEnvironment bool `toml:"clear-env,omitempty"`
}

// FullName returns the id and version of the buildpack in a single human-readable string.
func (b BuildpackInfo) FullName() string {
	return fmt.Sprintf("%s@%s", b.ID, b.Version)
}

// OrderBuildpack is a buildpack within a buildpack order group.
type OrderBuildpack struct {
	// ID is the id of the buildpack.
	ID string `toml:"id"`

	// Version is the version of the buildpack.
	Version string `toml:"version"`

	// Optional is whether the buildpack is optional within the group.
	Optional bool `toml:"optional,omitempty"`

	// URI is a filesystem reference to a sibling buildpack project, relative to the
	// descriptor that declares it.  Only meaningful at packaging time and dropped
	// from packaged descriptors.
	URI string `toml:"uri,omitempty"`
}

// Order is an order definition in the buildpack.
type Order struct {
	// Groups is the collection of groups within the order.
	Groups []OrderBuildpack `toml:"group"`
}

// Stack is a stack supported by the buildpack.
type Stack struct {
	// ID is the id of the stack.  The id "*" declares the buildpack stack-agnostic.
	ID string `toml:"id"`

	// Mixins is the collection of mixins associated with the stack.
	Mixins []string `toml:"mixins,omitempty"`
}

// StackAgnosticID is the stack id declaring that a buildpack runs on any stack.
const StackAgnosticID = "*"

// Buildpack is the contents of the buildpack.toml file.
type Buildpack struct {
	// API is the Buildpack API version implemented by the buildpack.
	API string `toml:"api"`

	// Info is information about the buildpack.
	Info BuildpackInfo `toml:"buildpack"`

	// Path is the path to the buildpack.
	Path string `toml:"-"`

	// Stacks is the collection of stacks supported by the buildpack.  Empty for
	// meta-buildpacks, which declare an order instead.
	Stacks []Stack `toml:"stacks,omitempty"`

	// Order is the order declared by a meta-buildpack.
	Order []Order `toml:"order,omitempty"`

	// Metadata is arbitrary metadata attached to the buildpack.
	Metadata map[string]interface{} `toml:"metadata,omitempty"`
}

// IsMeta returns whether the buildpack is a meta-buildpack, composed entirely of an
// order of other buildpacks.
func (b Buildpack) IsMeta() bool {
	return len(b.Order) > 0
}

// Validate eagerly checks the descriptor against the specification's format rules.
func (b Buildpack) Validate() error {
	if b.API == "" {
		return NewSchemaError(b.Path, "api", "missing Buildpack API version")
	}

	if _, err := semver.NewVersion(b.API); err != nil {
		return NewSchemaError(b.Path, "api", fmt.Sprintf("%q is not a valid version", b.API))
	}

	if b.Info.ID == "" {
		return NewSchemaError(b.Path, "buildpack.id", "missing buildpack id")
	}

	if !idPattern.MatchString(b.Info.ID) {
		return NewSchemaError(b.Path, "buildpack.id", fmt.Sprintf("%q must be lowercase segments separated by '.', '-', '_' or '/'", b.Info.ID))
	}

	if _, err := semver.NewVersion(b.Info.Version); err != nil {
		return NewSchemaError(b.Path, "buildpack.version", fmt.Sprintf("%q is not a valid semantic version", b.Info.Version))
	}

	if len(b.Stacks) > 0 && len(b.Order) > 0 {
		return NewSchemaError(b.Path, "order", "a buildpack cannot declare both stacks and an order")
	}

	for _, s := range b.Stacks {
		if s.ID != StackAgnosticID && !idPattern.MatchString(s.ID) {
			return NewSchemaError(b.Path, "stacks.id", fmt.Sprintf("%q is not a valid stack id", s.ID))
		}
	}

	for _, o := range b.Order {
		for _, g := range o.Groups {
			// an entry needs an id unless a packaging-time uri will supply one
			if g.ID == "" && g.URI == "" {
				return NewSchemaError(b.Path, "order.group.id", "missing buildpack id")
			}
		}
	}

	return nil
}

// ValidateAPI checks the declared Buildpack API version against the supported range.
// An out-of-range version is a hard error, never a detection failure.
func (b Buildpack) ValidateAPI() error {
	api, err := semver.NewVersion(b.API)
	if err != nil {
		return NewSchemaError(b.Path, "api", fmt.Sprintf("%q is not a valid version", b.API))
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf(">= %s, <= %s", MinSupportedAPIVersion, MaxSupportedAPIVersion))
	if err != nil {
		return fmt.Errorf("unable to construct api constraint\n%w", err)
	}

	if !constraint.Check(api) {
		return NewSchemaError(b.Path, "api",
			fmt.Sprintf("this library is only compatible with Buildpack APIs >= %s, <= %s", MinSupportedAPIVersion, MaxSupportedAPIVersion))
	}

	return nil
}

// ParseBuildpack reads and validates a buildpack.toml file.
func ParseBuildpack(path string) (Buildpack, error) {
	var buildpack Buildpack

	if _, err := toml.DecodeFile(path, &buildpack); err != nil {
		if os.IsNotExist(err) {
			return Buildpack{}, NewSchemaError(path, "", "no buildpack descriptor found")
		}
		return Buildpack{}, NewSchemaError(path, "", err.Error())
	}
	buildpack.Path = path

	if err := buildpack.Validate(); err != nil {
		return Buildpack{}, err
	}

	return buildpack, nil
}
