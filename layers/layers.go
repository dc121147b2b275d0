/*
 * Copyright 2018-2024 the original author or authors.
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

// Package layers owns the on-disk layer tree for a single buildpack invocation:
// creation, restoration from a prior invocation, atomic metadata persistence, and
// eviction of layers the buildpack no longer declares.
package layers

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cnbtools/cnbkit/cnb"
)

// IOError describes a filesystem failure during layer commit or restore.  Such
// failures are fatal to the invocation and never retried.
type IOError struct {
	// Layer is the name of the layer being operated on.
	Layer string

	// Err is the underlying failure.
	Err error
}

func (i IOError) Error() string {
	return fmt.Sprintf("layer %s: %s", i.Layer, i.Err)
}

func (i IOError) Unwrap() error {
	return i.Err
}

// Exec represents the exec.d location of a layer.
type Exec struct {
	// Path is the path to the exec.d directory.
	Path string
}

// FilePath returns the fully qualified file path for a given name.
func (e Exec) FilePath(name string) string {
	return filepath.Join(e.Path, name)
}

// ProcessFilePath returns the fully qualified file path for a given process type and name.
func (e Exec) ProcessFilePath(processType string, name string) string {
	return filepath.Join(e.Path, processType, name)
}

// Layer is a handle on one named layer within an invocation.
type Layer struct {
	// LayerTypes indicates the facets of the layer.
	cnb.LayerTypes `toml:"types"`

	// Metadata is the metadata associated with the layer.
	Metadata map[string]interface{} `toml:"metadata"`

	// Name is the name of the layer, unique within one invocation.
	Name string `toml:"-"`

	// Path is the filesystem location of the layer.
	Path string `toml:"-"`

	// BuildEnvironment are the environment modifications visible at build time.
	BuildEnvironment Environment `toml:"-"`

	// LaunchEnvironment are the environment modifications visible at launch time.
	LaunchEnvironment Environment `toml:"-"`

	// SharedEnvironment are the environment modifications visible at both times.
	SharedEnvironment Environment `toml:"-"`

	// Profile are the profile.d scripts of the layer.
	Profile Profile `toml:"-"`

	// Exec is the exec.d location of the layer.
	Exec Exec `toml:"-"`
}

// MetadataEquals compares the restored metadata against an expected value, the
// reuse-versus-rebuild decision for cached layers.
func (l Layer) MetadataEquals(expected map[string]interface{}) bool {
	if len(l.Metadata) == 0 && len(expected) == 0 {
		return true
	}

	return reflect.DeepEqual(l.Metadata, expected)
}

// Reset wipes the layer directory and clears all restored state, leaving an empty
// layer to be rebuilt.
func (l Layer) Reset() (Layer, error) {
	l.LayerTypes = cnb.LayerTypes{}
	l.Metadata = nil
	l.BuildEnvironment = Environment{}
	l.LaunchEnvironment = Environment{}
	l.SharedEnvironment = Environment{}
	l.Profile = Profile{}

	if err := os.RemoveAll(l.Path); err != nil {
		return Layer{}, IOError{Layer: l.Name, Err: err}
	}

	if err := os.MkdirAll(l.Path, 0755); err != nil {
		return Layer{}, IOError{Layer: l.Name, Err: err}
	}

	return l, nil
}

// Manager owns the layer directory tree for one buildpack invocation.
type Manager struct {
	path     string
	restored map[string]bool
	order    []string
	kept     map[string]bool
}

// NewManager creates a Manager rooted at a layers directory, recording the set of
// layers persisted by a prior invocation.
func NewManager(path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, IOError{Err: err}
	}

	files, err := filepath.Glob(filepath.Join(path, "*.toml"))
	if err != nil {
		return nil, IOError{Err: err}
	}

	restored := map[string]bool{}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".toml")
		switch name {
		case "launch", "store", "build", "plan":
			// reserved documents, not layer metadata
			continue
		}
		restored[name] = true
	}

	return &Manager{
		path:     path,
		restored: restored,
		kept:     map[string]bool{},
	}, nil
}

// Path returns the layers directory the Manager is rooted at.
func (m *Manager) Path() string {
	return m.path
}

// Layer returns a handle on a named layer, creating its directory if absent and
// restoring prior metadata if present.  Creation order is recorded; it is the
// order in which layer environments compose.
func (m *Manager) Layer(name string) (Layer, error) {
	layer := Layer{
		Name:              name,
		Path:              filepath.Join(m.path, name),
		Metadata:          map[string]interface{}{},
		BuildEnvironment:  Environment{},
		LaunchEnvironment: Environment{},
		SharedEnvironment: Environment{},
		Profile:           Profile{},
		Exec:              Exec{Path: filepath.Join(m.path, name, "exec.d")},
	}

	file := filepath.Join(m.path, fmt.Sprintf("%s.toml", name))
	if _, err := toml.DecodeFile(file, &layer); err != nil && !os.IsNotExist(err) {
		return Layer{}, fmt.Errorf("unable to decode layer metadata %s\n%w", file, err)
	}

	if err := os.MkdirAll(layer.Path, 0755); err != nil {
		return Layer{}, IOError{Layer: name, Err: err}
	}

	if !m.touched(name) {
		m.order = append(m.order, name)
	}
	delete(m.restored, name)

	return layer, nil
}

// Commit persists or deletes a layer.  With keep false the layer directory and its
// metadata record are removed.  With keep true the metadata document is written
// atomically, so a crash mid-write never leaves a half-written file beside a
// populated layer directory.
func (m *Manager) Commit(layer Layer, keep bool) error {
	file := filepath.Join(m.path, fmt.Sprintf("%s.toml", layer.Name))

	if !keep {
		if err := os.RemoveAll(layer.Path); err != nil {
			return IOError{Layer: layer.Name, Err: err}
		}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return IOError{Layer: layer.Name, Err: err}
		}
		delete(m.kept, layer.Name)
		return nil
	}

	temp, err := os.CreateTemp(m.path, fmt.Sprintf(".%s-*.toml", layer.Name))
	if err != nil {
		return IOError{Layer: layer.Name, Err: err}
	}

	if err := toml.NewEncoder(temp).Encode(layer); err != nil {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
		return IOError{Layer: layer.Name, Err: err}
	}

	if err := temp.Close(); err != nil {
		_ = os.Remove(temp.Name())
		return IOError{Layer: layer.Name, Err: err}
	}

	if err := os.Rename(temp.Name(), file); err != nil {
		_ = os.Remove(temp.Name())
		return IOError{Layer: layer.Name, Err: err}
	}

	m.kept[layer.Name] = true
	return nil
}

// Restored returns the names of layers persisted by a prior invocation and not yet
// touched this run, sorted.
func (m *Manager) Restored() []string {
	var names []string
	for name := range m.restored {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// EvictUntouched removes every restored layer left untouched by this invocation,
// both directory and metadata record, and returns the evicted names.  Layers are
// kept only by explicit opt-in; anything else would accumulate without bound
// across repeated invocations.
func (m *Manager) EvictUntouched() ([]string, error) {
	evicted := m.Restored()

	for _, name := range evicted {
		if err := os.RemoveAll(filepath.Join(m.path, name)); err != nil {
			return nil, IOError{Layer: name, Err: err}
		}
		if err := os.Remove(filepath.Join(m.path, fmt.Sprintf("%s.toml", name))); err != nil && !os.IsNotExist(err) {
			return nil, IOError{Layer: name, Err: err}
		}
		delete(m.restored, name)
	}

	return evicted, nil
}

// Kept returns the names of layers committed with keep true, in creation order.
// Later layers may intentionally shadow earlier ones, so this order is the one the
// composed environment must honor.
func (m *Manager) Kept() []string {
	var names []string
	for _, name := range m.order {
		if m.kept[name] {
			names = append(names, name)
		}
	}

	return names
}

func (m *Manager) touched(name string) bool {
	for _, n := range m.order {
		if n == name {
			return true
		}
	}

	return false
}
