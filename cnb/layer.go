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

package cnb

// LayerTypes describes which facets apply to a given layer.  A layer may have any
// combination of Launch, Build, and Cache facets.
type LayerTypes struct {
	// Build indicates that a layer should be visible to subsequent build steps.
	Build bool `toml:"build"`

	// Cache indicates that a layer should be persisted across invocations.
	Cache bool `toml:"cache"`

	// Launch indicates that a layer should be part of the runtime image.
	Launch bool `toml:"launch"`
}

// Store represents the contents of store.toml, metadata persisted even across
// cache cleaning.
type Store struct {
	// Metadata is the persistent metadata.
	Metadata map[string]interface{} `toml:"metadata"`
}
