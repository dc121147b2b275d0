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

// Package env implements the ordered environment-modification model used to compose
// the process environment contributed by buildpack layers and the platform.
package env

import "fmt"

// DefaultDelimiter separates entries of path-like variables when no explicit
// delimiter was declared.
const DefaultDelimiter = ":"

// Kind is the way a modification combines with the current value of a variable.
type Kind int

const (
	// Override replaces the current value.
	Override Kind = iota

	// Prepend places the value ahead of the current value, joined by the delimiter.
	Prepend

	// Append places the value after the current value, joined by the delimiter.
	Append

	// Default sets the value only if the variable is currently absent.
	Default

	// Unset removes the variable.
	Unset

	// PrependPath is Prepend with the path-list delimiter.
	PrependPath

	// AppendPath is Append with the path-list delimiter.
	AppendPath
)

func (k Kind) String() string {
	switch k {
	case Override:
		return "override"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	case Default:
		return "default"
	case Unset:
		return "unset"
	case PrependPath:
		return "prepend-path"
	case AppendPath:
		return "append-path"
	}

	return fmt.Sprintf("unknown(%d)", int(k))
}

// Modification is one named change to a process environment.
type Modification struct {
	// Name is the name of the variable.
	Name string

	// Kind is the way the modification combines with the current value.
	Kind Kind

	// Value is the value of the modification.  Ignored for Unset.
	Value string

	// Delimiter joins Prepend and Append values with the current value.  Empty
	// means DefaultDelimiter.
	Delimiter string
}

// Environment is an ordered collection of modifications.  Order is significant:
// applying the same list to the same base always yields the same result, and later
// entries see the effect of earlier ones.
type Environment []Modification

// Precedence names the order in which platform-scoped and buildpack-scoped
// modifications combine.  It is an explicit policy, not an accident of iteration.
type Precedence int

const (
	// PlatformFirst applies the platform mapping as the base, with buildpack
	// modifications layered over it so buildpacks shadow the platform.
	PlatformFirst Precedence = iota

	// BuildpackFirst applies buildpack modifications to an empty base, then fills
	// absent names from the platform mapping.
	BuildpackFirst
)

// Apply folds the environment over a base mapping, left to right, and returns the
// merged mapping.  The base is never mutated.
func Apply(base map[string]string, environment Environment) map[string]string {
	merged := make(map[string]string, len(base))
	for k, v := range base {
		merged[k] = v
	}

	for _, m := range environment {
		current, exists := merged[m.Name]

		switch m.Kind {
		case Override:
			merged[m.Name] = m.Value
		case Default:
			if !exists {
				merged[m.Name] = m.Value
			}
		case Unset:
			delete(merged, m.Name)
		case Prepend, PrependPath:
			if exists && current != "" {
				merged[m.Name] = m.Value + m.delimiter() + current
			} else {
				merged[m.Name] = m.Value
			}
		case Append, AppendPath:
			if exists && current != "" {
				merged[m.Name] = current + m.delimiter() + m.Value
			} else {
				merged[m.Name] = m.Value
			}
		}
	}

	return merged
}

// Combine concatenates platform-derived and buildpack-derived modification lists
// according to a precedence policy.
func Combine(precedence Precedence, platform Environment, buildpack Environment) Environment {
	combined := make(Environment, 0, len(platform)+len(buildpack))

	switch precedence {
	case BuildpackFirst:
		combined = append(combined, buildpack...)
		for _, m := range platform {
			m.Kind = Default
			combined = append(combined, m)
		}
	default:
		combined = append(combined, platform...)
		combined = append(combined, buildpack...)
	}

	return combined
}

func (m Modification) delimiter() string {
	if m.Delimiter != "" {
		return m.Delimiter
	}

	return DefaultDelimiter
}
