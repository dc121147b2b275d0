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

// SchemaError describes a malformed or invalid specification document.  It always
// carries the offending path and, where known, the field that failed validation.
type SchemaError struct {
	// Path is the path of the offending document.
	Path string

	// Field is the TOML field that failed validation, empty when the document as a
	// whole could not be parsed.
	Field string

	// Reason is a human-readable description of the failure.
	Reason string
}

// NewSchemaError creates a new SchemaError for a document, field, and reason.
func NewSchemaError(path string, field string, reason string) SchemaError {
	return SchemaError{Path: path, Field: field, Reason: reason}
}

func (s SchemaError) Error() string {
	if s.Field == "" {
		return fmt.Sprintf("invalid document %s: %s", s.Path, s.Reason)
	}

	return fmt.Sprintf("invalid document %s: field %s: %s", s.Path, s.Field, s.Reason)
}
