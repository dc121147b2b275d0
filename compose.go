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
	"path/filepath"
	"sort"

	"github.com/cnbtools/cnbkit/env"
	"github.com/cnbtools/cnbkit/layers"
)

// buildEnvironmentDirs are the layer directories visible to later build steps, in
// the order they apply within one layer.
var buildEnvironmentDirs = []string{"env", "env.build"}

// ComposeEnvironment computes the environment handed to later buildpacks: the
// platform mapping combined with every kept layer's environment directories.
// Layers apply in creation order, not alphabetical order, since later layers may
// intentionally shadow earlier ones.
func ComposeEnvironment(manager *layers.Manager, platform map[string]string, precedence env.Precedence) (map[string]string, error) {
	var contributions env.Environment

	for _, name := range manager.Kept() {
		for _, dir := range buildEnvironmentDirs {
			path := filepath.Join(manager.Path(), name, dir)
			environment, err := env.LoadDir(path)
			if err != nil {
				return nil, fmt.Errorf("unable to load layer environment %s\n%w", path, err)
			}

			contributions = append(contributions, environment...)
		}
	}

	var base env.Environment
	for name, value := range platform {
		base = append(base, env.Modification{Name: name, Kind: env.Override, Value: value})
	}
	// platform files carry no ordering of their own; sort for determinism
	sort.Slice(base, func(i, j int) bool { return base[i].Name < base[j].Name })

	return env.Apply(map[string]string{}, env.Combine(precedence, base, contributions)), nil
}
