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

package layers

import "fmt"

// Environment is the write side of the file-based environment variable
// specification: keys are "<NAME>.<kind>" file names, values their contents.  The
// engine materializes one file per entry under the layer's env directories.
type Environment map[string]string

// Override overrides any existing value for an environment variable with this value.
func (e Environment) Override(name string, a ...interface{}) {
	e[fmt.Sprintf("%s.override", name)] = fmt.Sprint(a...)
}

// Overridef formats according to a format specifier and overrides any existing value.
func (e Environment) Overridef(name string, format string, a ...interface{}) {
	e[fmt.Sprintf("%s.override", name)] = fmt.Sprintf(format, a...)
}

// Default sets a default for an environment variable with this value.
func (e Environment) Default(name string, a ...interface{}) {
	e[fmt.Sprintf("%s.default", name)] = fmt.Sprint(a...)
}

// Defaultf formats according to a format specifier and sets a default.
func (e Environment) Defaultf(name string, format string, a ...interface{}) {
	e[fmt.Sprintf("%s.default", name)] = fmt.Sprintf(format, a...)
}

// Append appends this value to any previous declarations, joined by delimiter.
func (e Environment) Append(name string, delimiter string, a ...interface{}) {
	e.delimiter(name, delimiter)
	e[fmt.Sprintf("%s.append", name)] = fmt.Sprint(a...)
}

// Appendf formats according to a format specifier and appends the value.
func (e Environment) Appendf(name string, delimiter string, format string, a ...interface{}) {
	e.delimiter(name, delimiter)
	e[fmt.Sprintf("%s.append", name)] = fmt.Sprintf(format, a...)
}

// Prepend prepends this value to any previous declarations, joined by delimiter.
func (e Environment) Prepend(name string, delimiter string, a ...interface{}) {
	e.delimiter(name, delimiter)
	e[fmt.Sprintf("%s.prepend", name)] = fmt.Sprint(a...)
}

// Prependf formats according to a format specifier and prepends the value.
func (e Environment) Prependf(name string, delimiter string, format string, a ...interface{}) {
	e.delimiter(name, delimiter)
	e[fmt.Sprintf("%s.prepend", name)] = fmt.Sprintf(format, a...)
}

// Unset removes the environment variable entirely.
func (e Environment) Unset(name string) {
	e[fmt.Sprintf("%s.unset", name)] = ""
}

func (e Environment) delimiter(name string, delimiter string) {
	e[fmt.Sprintf("%s.delim", name)] = delimiter
}

// Profile is the collection of profile.d scripts of a layer, keyed by script name.
type Profile map[string]string

// Add adds a profile.d script with a given name and contents.
func (p Profile) Add(name string, a ...interface{}) {
	p[name] = fmt.Sprint(a...)
}

// Addf formats according to a format specifier and adds a profile.d script.
func (p Profile) Addf(name string, format string, a ...interface{}) {
	p[name] = fmt.Sprintf(format, a...)
}
