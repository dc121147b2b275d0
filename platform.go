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
	"sort"

	"github.com/cnbtools/cnbkit/internal"
)

const (
	// BindingProvider is the metadata key for a binding's provider.
	BindingProvider = "provider"

	// BindingType is the metadata key for a binding's type.
	BindingType = "type"
)

// Binding is a projection of metadata about an external entity to be bound to.
type Binding struct {

	// Name is the name of the binding.
	Name string

	// Path is the path to the binding directory.
	Path string

	// Secret is the secret of the binding.
	Secret map[string]string
}

// NewBindingFromPath creates a new Binding from the files located at a path.
func NewBindingFromPath(path string) (Binding, error) {
	secret, err := internal.NewConfigMapFromPath(path)
	if err != nil {
		return Binding{}, fmt.Errorf("unable to create new config map from %s\n%w", path, err)
	}

	return Binding{
		Name:   filepath.Base(path),
		Path:   path,
		Secret: secret,
	}, nil
}

// Type returns the type of the binding.
func (b Binding) Type() string {
	return b.Secret[BindingType]
}

// Provider returns the provider of the binding.
func (b Binding) Provider() string {
	return b.Secret[BindingProvider]
}

// SecretFilePath returns the path to a secret file with the given name.
func (b Binding) SecretFilePath(name string) (string, bool) {
	if _, ok := b.Secret[name]; !ok {
		return "", false
	}

	return filepath.Join(b.Path, name), true
}

func (b Binding) String() string {
	var keys []string
	for k := range b.Secret {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return fmt.Sprintf("{Path: %s Secret: %s}", b.Path, keys)
}

// Bindings is a collection of bindings.
type Bindings []Binding

// NewBindingsFromPath creates a new instance from all the bindings at a given path.
// A missing path yields an empty collection.
func NewBindingsFromPath(path string) (Bindings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Bindings{}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*"))
	if err != nil {
		return nil, fmt.Errorf("unable to glob %s\n%w", path, err)
	}

	bindings := Bindings{}
	for _, file := range files {
		binding, err := NewBindingFromPath(file)
		if err != nil {
			return nil, fmt.Errorf("unable to create new binding from %s\n%w", file, err)
		}

		bindings = append(bindings, binding)
	}

	return bindings, nil
}

// Platform is the contents of the platform directory.
type Platform struct {

	// Bindings are the external bindings available to the application.
	Bindings Bindings

	// Environment is the environment exposed by the platform, loaded from files
	// rather than the process environment.
	Environment map[string]string

	// Path is the path to the platform.
	Path string
}

// NewPlatform reads a platform directory: its env files and bindings.  The path
// must be an existing directory.
func NewPlatform(path string) (Platform, error) {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return Platform{}, fmt.Errorf("platform path %s must be a readable directory", path)
	}

	platform := Platform{Path: path}

	file := filepath.Join(path, "env")
	if platform.Environment, err = internal.NewConfigMapFromPath(file); err != nil {
		return Platform{}, fmt.Errorf("unable to read platform environment %s\n%w", file, err)
	}

	file = filepath.Join(path, "bindings")
	if platform.Bindings, err = NewBindingsFromPath(file); err != nil {
		return Platform{}, fmt.Errorf("unable to read platform bindings %s\n%w", file, err)
	}

	return platform, nil
}
