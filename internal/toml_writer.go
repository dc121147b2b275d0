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

package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// TOMLWriter is a type used to write TOML files to the filesystem.
type TOMLWriter struct{}

// Write creates the path's parent directories and marshals the value to the file.
// The document lands via a temporary file and rename, so a reader never observes a
// half-written document.
func (TOMLWriter) Write(path string, value interface{}) error {
	if value == nil {
		return nil
	}

	d := filepath.Dir(path)
	if err := os.MkdirAll(d, 0755); err != nil {
		return fmt.Errorf("unable to mkdir %s\n%w", d, err)
	}

	temp, err := os.CreateTemp(d, fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("unable to create temp file in %s\n%w", d, err)
	}

	if err := toml.NewEncoder(temp).Encode(value); err != nil {
		_ = temp.Close()
		_ = os.Remove(temp.Name())
		return fmt.Errorf("unable to encode %s\n%w", path, err)
	}

	if err := temp.Close(); err != nil {
		_ = os.Remove(temp.Name())
		return fmt.Errorf("unable to close %s\n%w", temp.Name(), err)
	}

	if err := os.Rename(temp.Name(), path); err != nil {
		_ = os.Remove(temp.Name())
		return fmt.Errorf("unable to rename %s to %s\n%w", temp.Name(), path, err)
	}

	return nil
}
