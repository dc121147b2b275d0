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

package internal_test

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"

	"github.com/cnbtools/cnbkit/internal"
)

func testExitHandler(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		code    *int
		buffer  *bytes.Buffer
		handler internal.ExitHandler
	)

	it.Before(func() {
		code = new(int)
		*code = -1
		buffer = &bytes.Buffer{}

		handler = internal.NewExitHandler(
			internal.WithExitHandlerExitFunc(func(c int) { *code = c }),
			internal.WithExitHandlerWriter(buffer),
		)
	})

	it("exits zero on pass", func() {
		handler.Pass()
		Expect(*code).To(Equal(0))
	})

	it("exits 100 on detection failure", func() {
		handler.Fail()
		Expect(*code).To(Equal(100))
		Expect(buffer.String()).To(BeEmpty())
	})

	it("writes the error and exits 1", func() {
		handler.Error(errors.New("something went wrong"))
		Expect(*code).To(Equal(1))
		Expect(buffer.String()).To(Equal("something went wrong\n"))
	})

	it("never reports an error with the failure code", func() {
		handler.Error(errors.New("an error"))
		Expect(*code).NotTo(Equal(internal.FailStatusCode))
	})
}
