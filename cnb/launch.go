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

import "fmt"

// Process represents metadata about a type of command that can be run.
type Process struct {
	// Type is the type of the process.  Unique within one launch document.
	Type string `toml:"type"`

	// Command is the command of the process.
	Command string `toml:"command"`

	// Arguments are arguments to the command.
	Arguments []string `toml:"args,omitempty"`

	// Direct indicates the command is executed directly rather than through a shell.
	Direct bool `toml:"direct,omitempty"`

	// Default indicates the process type is the default for the app image.
	Default bool `toml:"default,omitempty"`
}

// Label represents an image label contributed by the buildpack.
type Label struct {
	// Key is the key of the label.
	Key string `toml:"key"`

	// Value is the value of the label.
	Value string `toml:"value"`
}

// Slice represents an application slice contributed by the buildpack.
type Slice struct {
	// Paths are the contents of the slice.
	Paths []string `toml:"paths"`
}

// LaunchTOML represents the contents of launch.toml.
type LaunchTOML struct {
	// Labels is the collection of image labels contributed by the buildpack.
	Labels []Label `toml:"labels,omitempty"`

	// Processes is the collection of process types contributed by the buildpack.
	Processes []Process `toml:"processes,omitempty"`

	// Slices is the collection of slices contributed by the buildpack.
	Slices []Slice `toml:"slices,omitempty"`
}

// IsEmpty returns whether the document has any content at all.
func (l LaunchTOML) IsEmpty() bool {
	return len(l.Labels) == 0 && len(l.Processes) == 0 && len(l.Slices) == 0
}

// Validate rejects duplicate process types and more than one default process.
func (l LaunchTOML) Validate() error {
	types := map[string]struct{}{}
	defaults := 0

	for _, p := range l.Processes {
		if p.Type == "" {
			return NewSchemaError("launch.toml", "processes.type", "missing process type")
		}
		if _, ok := types[p.Type]; ok {
			return NewSchemaError("launch.toml", "processes.type", fmt.Sprintf("duplicate process type %q", p.Type))
		}
		types[p.Type] = struct{}{}

		if p.Default {
			defaults++
		}
	}

	if defaults > 1 {
		return NewSchemaError("launch.toml", "processes.default", "multiple processes marked as default")
	}

	return nil
}
