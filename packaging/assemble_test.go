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

package packaging_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"

	"github.com/cnbtools/cnbkit/cnb"
	"github.com/cnbtools/cnbkit/packaging"
)

// fakeCompiler stands in for the Go toolchain, writing a marker file per artifact
// and counting invocations.  Safe for concurrent use, like the real one.
type fakeCompiler struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (c *fakeCompiler) Compile(_ context.Context, src string, target packaging.Target, dest string) error {
	c.mu.Lock()
	c.calls = append(c.calls, fmt.Sprintf("%s@%s", filepath.Base(src), target))
	fail := c.fail[filepath.Base(src)]
	c.mu.Unlock()

	if fail {
		return errors.New("compilation failed")
	}

	return os.WriteFile(dest, []byte("binary for "+src), 0644)
}

func (c *fakeCompiler) invocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.calls)
}

func testAssembler(t *testing.T, _ spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		root     string
		output   string
		compiler *fakeCompiler
		target   packaging.Target
	)

	it.Before(func() {
		root = t.TempDir()
		output = filepath.Join(t.TempDir(), "packaged")
		compiler = &fakeCompiler{fail: map[string]bool{}}
		target = packaging.Target{OS: "linux", Arch: "amd64"}
	})

	writeVersioned := func(dir string, id string, version string) {
		path := filepath.Join(root, dir)
		Expect(os.MkdirAll(path, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(path, "buildpack.toml"), []byte(fmt.Sprintf(`
api = "0.8"

[buildpack]
id = %q
version = %q

[[stacks]]
id = "*"
`, id, version)), 0600)).To(Succeed())
	}

	writeComponent := func(dir string, id string) {
		writeVersioned(dir, id, "1.0.0")
	}

	writeMeta := func(dir string, id string, uris ...string) {
		path := filepath.Join(root, dir)
		Expect(os.MkdirAll(path, 0755)).To(Succeed())

		var groups strings.Builder
		for _, uri := range uris {
			groups.WriteString(fmt.Sprintf("\n[[order.group]]\nuri = %q\n", uri))
		}
		Expect(os.WriteFile(filepath.Join(path, "buildpack.toml"), []byte(fmt.Sprintf(`
api = "0.8"

[buildpack]
id = %q
version = "1.0.0"

[[order]]
%s`, id, groups.String())), 0600)).To(Succeed())
	}

	assemble := func() (map[string]string, error) {
		projects, err := packaging.ResolveWorkspace(root)
		Expect(err).NotTo(HaveOccurred())

		assembler := packaging.NewAssembler(
			packaging.WithCompiler(compiler),
			packaging.WithWorkers(2),
		)
		return assembler.Assemble(context.Background(), projects, target, output)
	}

	it("lays out a component bundle with both entry points", func() {
		writeComponent("java", "example/java")

		bundles, err := assemble()
		Expect(err).NotTo(HaveOccurred())

		bundle := bundles[filepath.Join(root, "java")]
		Expect(bundle).To(Equal(filepath.Join(output, "example_java", "1.0.0")))

		build := filepath.Join(bundle, "bin", "build")
		Expect(build).To(BeARegularFile())
		info, err := os.Stat(build)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm() & 0111).NotTo(BeZero())

		detect := filepath.Join(bundle, "bin", "detect")
		linked, err := os.Readlink(detect)
		Expect(err).NotTo(HaveOccurred())
		Expect(linked).To(Equal("build"))

		var descriptor cnb.Buildpack
		_, err = toml.DecodeFile(filepath.Join(bundle, "buildpack.toml"), &descriptor)
		Expect(err).NotTo(HaveOccurred())
		Expect(descriptor.Info.ID).To(Equal("example/java"))
	})

	it("compiles each project once per target and profile", func() {
		writeComponent("java", "example/java")

		projects, err := packaging.ResolveWorkspace(root)
		Expect(err).NotTo(HaveOccurred())

		assembler := packaging.NewAssembler(packaging.WithCompiler(compiler))
		_, err = assembler.Assemble(context.Background(), projects, target, output)
		Expect(err).NotTo(HaveOccurred())

		// a second pass reuses the cached artifact
		_, err = assembler.Assemble(context.Background(), projects, target, output)
		Expect(err).NotTo(HaveOccurred())

		Expect(compiler.invocations()).To(Equal(1))
		Expect(assembler.Compilations()).To(Equal(1))
	})

	it("nests children under a composite bundle keyed by id and version", func() {
		writeComponent("java", "example/java")
		writeComponent("node", "example/node")
		writeMeta("suite", "example/suite", "../java", "../node")

		bundles, err := assemble()
		Expect(err).NotTo(HaveOccurred())

		suite := bundles[filepath.Join(root, "suite")]
		Expect(filepath.Join(suite, "buildpacks", "example_java", "1.0.0", "buildpack.toml")).To(BeARegularFile())
		Expect(filepath.Join(suite, "buildpacks", "example_java", "1.0.0", "bin", "build")).To(BeARegularFile())
		Expect(filepath.Join(suite, "buildpacks", "example_node", "1.0.0", "buildpack.toml")).To(BeARegularFile())

		// composites carry no binary of their own
		Expect(filepath.Join(suite, "bin")).NotTo(BeADirectory())
	})

	it("rewrites order references to id and version pairs", func() {
		writeComponent("java", "example/java")
		writeMeta("suite", "example/suite", "../java")

		bundles, err := assemble()
		Expect(err).NotTo(HaveOccurred())

		var descriptor cnb.Buildpack
		_, err = toml.DecodeFile(filepath.Join(bundles[filepath.Join(root, "suite")], "buildpack.toml"), &descriptor)
		Expect(err).NotTo(HaveOccurred())
		Expect(descriptor.Order).To(HaveLen(1))
		Expect(descriptor.Order[0].Groups).To(HaveLen(1))
		Expect(descriptor.Order[0].Groups[0].ID).To(Equal("example/java"))
		Expect(descriptor.Order[0].Groups[0].Version).To(Equal("1.0.0"))
		Expect(descriptor.Order[0].Groups[0].URI).To(BeEmpty())
	})

	it("shares one nested copy between parents depending on the same child", func() {
		writeComponent("java", "example/java")
		writeMeta("one", "example/one", "../java")
		writeMeta("two", "example/two", "../java")

		_, err := assemble()
		Expect(err).NotTo(HaveOccurred())

		Expect(compiler.invocations()).To(Equal(1))
	})

	it("keeps distinct bundles for projects sharing an id at different versions", func() {
		writeVersioned("java-one", "example/java", "1.0.0")
		writeVersioned("java-two", "example/java", "2.0.0")

		bundles, err := assemble()
		Expect(err).NotTo(HaveOccurred())

		one := bundles[filepath.Join(root, "java-one")]
		two := bundles[filepath.Join(root, "java-two")]
		Expect(one).To(Equal(filepath.Join(output, "example_java", "1.0.0")))
		Expect(two).To(Equal(filepath.Join(output, "example_java", "2.0.0")))

		var descriptor cnb.Buildpack
		_, err = toml.DecodeFile(filepath.Join(one, "buildpack.toml"), &descriptor)
		Expect(err).NotTo(HaveOccurred())
		Expect(descriptor.Info.Version).To(Equal("1.0.0"))

		_, err = toml.DecodeFile(filepath.Join(two, "buildpack.toml"), &descriptor)
		Expect(err).NotTo(HaveOccurred())
		Expect(descriptor.Info.Version).To(Equal("2.0.0"))
	})

	it("aborts dependents and leaves no partial bundle when a child fails", func() {
		compiler.fail["java"] = true
		writeComponent("java", "example/java")
		writeMeta("suite", "example/suite", "../java")

		_, err := assemble()

		var pkgErr packaging.PackagingError
		Expect(errors.As(err, &pkgErr)).To(BeTrue())
		Expect(pkgErr.Project).To(Equal(filepath.Join(root, "java")))
		Expect(pkgErr).To(MatchError(ContainSubstring("compilation failed")))

		Expect(filepath.Join(output, "example_java")).NotTo(BeADirectory())
		Expect(filepath.Join(output, "example_suite")).NotTo(BeADirectory())

		// staging directories are cleaned up
		stray, err := filepath.Glob(filepath.Join(output, ".assemble-*"))
		Expect(err).NotTo(HaveOccurred())
		Expect(stray).To(BeEmpty())
	})
}

func testTarget(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect
	)

	it("parses os and arch", func() {
		target, err := packaging.ParseTarget("linux/amd64")
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(packaging.Target{OS: "linux", Arch: "amd64"}))
		Expect(target.String()).To(Equal("linux/amd64"))
	})

	it("parses an optional variant", func() {
		target, err := packaging.ParseTarget("linux/arm/v6")
		Expect(err).NotTo(HaveOccurred())
		Expect(target.ArchVariant).To(Equal("v6"))
		Expect(target.String()).To(Equal("linux/arm/v6"))
	})

	it("rejects malformed targets", func() {
		for _, s := range []string{"", "linux", "linux/", "/amd64", "linux/amd64/v8/extra"} {
			_, err := packaging.ParseTarget(s)
			Expect(err).To(HaveOccurred())
		}
	})
}
