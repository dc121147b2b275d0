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

// Package style provides the color conventions for packaging diagnostics.
package style

import (
	"fmt"

	"github.com/heroku/color"
)

// Symbol formats a value the user supplied, quoting it when color is disabled.
var Symbol = func(format string, a ...interface{}) string {
	if !color.Enabled() {
		format = fmt.Sprintf("'%s'", format)
	}
	return Key(format, a...)
}

// Key highlights an identifier.
var Key = color.New(color.FgMagenta).SprintfFunc()

// Error highlights a fatal diagnostic.
var Error = color.New(color.FgRed, color.Bold).SprintfFunc()

// Step highlights a packaging progress line.
var Step = func(format string, a ...interface{}) string {
	return color.New(color.FgCyan).SprintfFunc()("===> "+format, a...)
}
