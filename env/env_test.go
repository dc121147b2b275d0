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

package env_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"

	"github.com/cnbtools/cnbkit/env"
)

func testApply(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect
	)

	it("returns the base unchanged for an empty environment", func() {
		base := map[string]string{"PATH": "/usr/bin"}

		Expect(env.Apply(base, nil)).To(Equal(base))
	})

	it("never mutates the base", func() {
		base := map[string]string{"PATH": "/usr/bin"}

		env.Apply(base, env.Environment{{Name: "PATH", Kind: env.Override, Value: "/bin"}})
		Expect(base).To(HaveKeyWithValue("PATH", "/usr/bin"))
	})

	it("overrides regardless of the current value", func() {
		base := map[string]string{"LANG": "C"}
		environment := env.Environment{{Name: "LANG", Kind: env.Override, Value: "C.UTF-8"}}

		Expect(env.Apply(base, environment)).To(HaveKeyWithValue("LANG", "C.UTF-8"))

		// override is idempotent
		Expect(env.Apply(env.Apply(base, environment), environment)).To(HaveKeyWithValue("LANG", "C.UTF-8"))
	})

	it("defaults only absent variables", func() {
		base := map[string]string{"PRESENT": "kept"}
		environment := env.Environment{
			{Name: "PRESENT", Kind: env.Default, Value: "ignored"},
			{Name: "ABSENT", Kind: env.Default, Value: "used"},
		}

		merged := env.Apply(base, environment)
		Expect(merged).To(HaveKeyWithValue("PRESENT", "kept"))
		Expect(merged).To(HaveKeyWithValue("ABSENT", "used"))
	})

	it("unsets variables and ignores the value", func() {
		base := map[string]string{"SECRET": "hunter2"}
		environment := env.Environment{{Name: "SECRET", Kind: env.Unset, Value: "ignored"}}

		Expect(env.Apply(base, environment)).NotTo(HaveKey("SECRET"))
	})

	it("prepends with the declared delimiter", func() {
		base := map[string]string{"CLASSPATH": "app.jar"}
		environment := env.Environment{{Name: "CLASSPATH", Kind: env.Prepend, Value: "lib.jar", Delimiter: ";"}}

		Expect(env.Apply(base, environment)).To(HaveKeyWithValue("CLASSPATH", "lib.jar;app.jar"))
	})

	it("appends with the default delimiter when none is declared", func() {
		base := map[string]string{"PATH": "/usr/bin"}
		environment := env.Environment{{Name: "PATH", Kind: env.Append, Value: "/opt/bin"}}

		Expect(env.Apply(base, environment)).To(HaveKeyWithValue("PATH", "/usr/bin:/opt/bin"))
	})

	it("treats an absent variable as empty for prepend and append", func() {
		environment := env.Environment{
			{Name: "A", Kind: env.Prepend, Value: "one"},
			{Name: "B", Kind: env.Append, Value: "two"},
		}

		merged := env.Apply(map[string]string{}, environment)
		Expect(merged).To(HaveKeyWithValue("A", "one"))
		Expect(merged).To(HaveKeyWithValue("B", "two"))
	})

	it("accumulates repeated appends", func() {
		environment := env.Environment{
			{Name: "PATH", Kind: env.Append, Value: "/a"},
			{Name: "PATH", Kind: env.Append, Value: "/b"},
		}

		Expect(env.Apply(map[string]string{}, environment)).To(HaveKeyWithValue("PATH", "/a:/b"))
	})

	it("applies path kinds like their plain counterparts", func() {
		base := map[string]string{"PATH": "/usr/bin"}
		environment := env.Environment{
			{Name: "PATH", Kind: env.PrependPath, Value: "/layers/bin"},
			{Name: "PATH", Kind: env.AppendPath, Value: "/opt/bin"},
		}

		Expect(env.Apply(base, environment)).To(HaveKeyWithValue("PATH", "/layers/bin:/usr/bin:/opt/bin"))
	})

	it("applies modifications left to right", func() {
		environment := env.Environment{
			{Name: "X", Kind: env.Override, Value: "first"},
			{Name: "X", Kind: env.Override, Value: "second"},
			{Name: "X", Kind: env.Append, Value: "third"},
		}

		Expect(env.Apply(map[string]string{}, environment)).To(HaveKeyWithValue("X", "second:third"))
	})
}

func testCombine(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		platform  = env.Environment{{Name: "LANG", Kind: env.Override, Value: "platform"}}
		buildpack = env.Environment{{Name: "LANG", Kind: env.Override, Value: "buildpack"}}
	)

	it("lets buildpack modifications shadow the platform under platform-first", func() {
		combined := env.Combine(env.PlatformFirst, platform, buildpack)

		Expect(env.Apply(map[string]string{}, combined)).To(HaveKeyWithValue("LANG", "buildpack"))
	})

	it("demotes platform modifications to defaults under buildpack-first", func() {
		combined := env.Combine(env.BuildpackFirst, platform, buildpack)

		Expect(env.Apply(map[string]string{}, combined)).To(HaveKeyWithValue("LANG", "buildpack"))

		combined = env.Combine(env.BuildpackFirst, platform, nil)
		Expect(env.Apply(map[string]string{}, combined)).To(HaveKeyWithValue("LANG", "platform"))
	})
}
