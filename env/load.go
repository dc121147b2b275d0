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

package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Error describes a malformed or unreadable modification file.
type Error struct {
	// Path is the path of the offending file.
	Path string

	// Reason is a human-readable description of the failure.
	Reason string
}

func (e Error) Error() string {
	return fmt.Sprintf("invalid environment file %s: %s", e.Path, e.Reason)
}

// LoadDir reads an Environment from a directory holding one file per variable per
// modification kind.  The file name encodes the kind via its suffix ("PATH.prepend"
// is a Prepend of PATH); a bare name is an Override.  "<NAME>.delim" files declare
// the delimiter for that variable.  File contents have a single trailing newline
// trimmed.  A missing directory yields an empty Environment.
func LoadDir(path string) (Environment, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return Environment{}, nil
	}
	if err != nil {
		return nil, Error{Path: path, Reason: err.Error()}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	delimiters := map[string]string{}
	for _, name := range names {
		variable, ok := strings.CutSuffix(name, ".delim")
		if !ok {
			continue
		}

		value, err := readValue(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		delimiters[variable] = value
	}

	var environment Environment
	for _, name := range names {
		variable, kind := splitKind(name)
		if kind == nil {
			continue
		}

		var value string
		if *kind != Unset {
			if value, err = readValue(filepath.Join(path, name)); err != nil {
				return nil, err
			}
		}

		environment = append(environment, Modification{
			Name:      variable,
			Kind:      *kind,
			Value:     value,
			Delimiter: delimiters[variable],
		})
	}

	return environment, nil
}

func splitKind(name string) (string, *Kind) {
	kinds := map[string]Kind{
		".override": Override,
		".prepend":  Prepend,
		".append":   Append,
		".default":  Default,
		".unset":    Unset,
	}

	ext := filepath.Ext(name)
	if ext == ".delim" {
		return "", nil
	}

	if kind, ok := kinds[ext]; ok {
		k := kind
		return strings.TrimSuffix(name, ext), &k
	}

	// a bare file overrides, for compatibility with the earliest platform API
	k := Override
	return name, &k
}

func readValue(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", Error{Path: path, Reason: err.Error()}
	}

	return strings.TrimSuffix(string(contents), "\n"), nil
}
