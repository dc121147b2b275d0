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

package layers_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sclevine/spec"

	"github.com/cnbtools/cnbkit/layers"
)

func testLayer(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		manager *layers.Manager
	)

	it.Before(func() {
		var err error
		manager, err = layers.NewManager(t.TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	it("compares metadata structurally", func() {
		layer, err := manager.Layer("test")
		Expect(err).NotTo(HaveOccurred())

		Expect(layer.MetadataEquals(nil)).To(BeTrue())

		layer.Metadata = map[string]interface{}{"version": "17", "count": int64(2)}
		Expect(layer.MetadataEquals(map[string]interface{}{"version": "17", "count": int64(2)})).To(BeTrue())
		Expect(layer.MetadataEquals(map[string]interface{}{"version": "17"})).To(BeFalse())
		Expect(layer.MetadataEquals(map[string]interface{}{"version": "17", "count": int64(3)})).To(BeFalse())
	})

	it("treats empty and nil metadata as equal", func() {
		layer := layers.Layer{Metadata: map[string]interface{}{}}
		Expect(layer.MetadataEquals(nil)).To(BeTrue())
	})

	it("resets the layer directory and state", func() {
		layer, err := manager.Layer("test")
		Expect(err).NotTo(HaveOccurred())

		layer.Build = true
		layer.Metadata = map[string]interface{}{"stale": true}
		layer.BuildEnvironment.Override("STALE", "true")
		Expect(os.WriteFile(filepath.Join(layer.Path, "artifact"), []byte("contents"), 0644)).To(Succeed())

		layer, err = layer.Reset()
		Expect(err).NotTo(HaveOccurred())
		Expect(layer.Build).To(BeFalse())
		Expect(layer.Metadata).To(BeNil())
		Expect(layer.BuildEnvironment).To(BeEmpty())
		Expect(layer.Path).To(BeADirectory())
		Expect(filepath.Join(layer.Path, "artifact")).NotTo(BeAnExistingFile())
	})

	it("derives exec.d paths from the layer path", func() {
		layer, err := manager.Layer("test")
		Expect(err).NotTo(HaveOccurred())

		Expect(layer.Exec.FilePath("setup")).To(Equal(filepath.Join(layer.Path, "exec.d", "setup")))
		Expect(layer.Exec.ProcessFilePath("web", "setup")).To(Equal(filepath.Join(layer.Path, "exec.d", "web", "setup")))
	})
}

func testManager(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		path    string
		manager *layers.Manager
	)

	it.Before(func() {
		path = t.TempDir()

		var err error
		manager, err = layers.NewManager(path)
		Expect(err).NotTo(HaveOccurred())
	})

	it("creates the layers directory if absent", func() {
		nested := filepath.Join(path, "nested", "layers")

		m, err := layers.NewManager(nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(nested).To(BeADirectory())
		Expect(m.Path()).To(Equal(nested))
	})

	it("creates a layer directory on first access", func() {
		layer, err := manager.Layer("jdk")
		Expect(err).NotTo(HaveOccurred())
		Expect(layer.Name).To(Equal("jdk"))
		Expect(layer.Path).To(Equal(filepath.Join(path, "jdk")))
		Expect(layer.Path).To(BeADirectory())
	})

	it("restores metadata persisted by a prior invocation", func() {
		Expect(os.WriteFile(filepath.Join(path, "jdk.toml"), []byte(`
[types]
build = true
cache = true

[metadata]
version = "17"
`), 0644)).To(Succeed())

		manager, err := layers.NewManager(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Restored()).To(Equal([]string{"jdk"}))

		layer, err := manager.Layer("jdk")
		Expect(err).NotTo(HaveOccurred())
		Expect(layer.Build).To(BeTrue())
		Expect(layer.Cache).To(BeTrue())
		Expect(layer.Metadata).To(HaveKeyWithValue("version", "17"))

		// accessing the layer removes it from the eviction candidates
		Expect(manager.Restored()).To(BeEmpty())
	})

	it("ignores reserved documents when restoring", func() {
		for _, name := range []string{"launch.toml", "store.toml", "build.toml", "plan.toml"} {
			Expect(os.WriteFile(filepath.Join(path, name), []byte(""), 0644)).To(Succeed())
		}
		Expect(os.WriteFile(filepath.Join(path, "jdk.toml"), []byte(""), 0644)).To(Succeed())

		manager, err := layers.NewManager(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Restored()).To(Equal([]string{"jdk"}))
	})

	it("commits metadata atomically beside the layer directory", func() {
		layer, err := manager.Layer("jdk")
		Expect(err).NotTo(HaveOccurred())

		layer.Launch = true
		layer.Metadata = map[string]interface{}{"version": "17"}
		Expect(manager.Commit(layer, true)).To(Succeed())

		restored, err := layers.NewManager(path)
		Expect(err).NotTo(HaveOccurred())
		roundtrip, err := restored.Layer("jdk")
		Expect(err).NotTo(HaveOccurred())
		Expect(roundtrip.Launch).To(BeTrue())
		Expect(roundtrip.MetadataEquals(map[string]interface{}{"version": "17"})).To(BeTrue())

		// no temp files left behind
		stray, err := filepath.Glob(filepath.Join(path, ".jdk-*"))
		Expect(err).NotTo(HaveOccurred())
		Expect(stray).To(BeEmpty())
	})

	it("removes the directory and metadata when a layer is not kept", func() {
		layer, err := manager.Layer("scratch")
		Expect(err).NotTo(HaveOccurred())
		Expect(manager.Commit(layer, true)).To(Succeed())

		Expect(manager.Commit(layer, false)).To(Succeed())
		Expect(filepath.Join(path, "scratch")).NotTo(BeADirectory())
		Expect(filepath.Join(path, "scratch.toml")).NotTo(BeAnExistingFile())
		Expect(manager.Kept()).To(BeEmpty())
	})

	it("evicts only the restored layers left untouched", func() {
		for _, name := range []string{"stale", "fresh"} {
			Expect(os.MkdirAll(filepath.Join(path, name), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(path, name+".toml"), []byte(""), 0644)).To(Succeed())
		}

		manager, err := layers.NewManager(path)
		Expect(err).NotTo(HaveOccurred())

		_, err = manager.Layer("fresh")
		Expect(err).NotTo(HaveOccurred())

		evicted, err := manager.EvictUntouched()
		Expect(err).NotTo(HaveOccurred())
		Expect(evicted).To(Equal([]string{"stale"}))
		Expect(filepath.Join(path, "stale")).NotTo(BeADirectory())
		Expect(filepath.Join(path, "stale.toml")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(path, "fresh")).To(BeADirectory())

		// a second eviction is a no-op
		evicted, err = manager.EvictUntouched()
		Expect(err).NotTo(HaveOccurred())
		Expect(evicted).To(BeEmpty())
	})

	it("reports kept layers in creation order", func() {
		for _, name := range []string{"zebra", "apple", "mango"} {
			layer, err := manager.Layer(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(manager.Commit(layer, true)).To(Succeed())
		}

		_, err := manager.Layer("ignored")
		Expect(err).NotTo(HaveOccurred())

		Expect(manager.Kept()).To(Equal([]string{"zebra", "apple", "mango"}))
	})

	it("does not duplicate creation order on repeated access", func() {
		for i := 0; i < 2; i++ {
			layer, err := manager.Layer("jdk")
			Expect(err).NotTo(HaveOccurred())
			Expect(manager.Commit(layer, true)).To(Succeed())
		}

		Expect(manager.Kept()).To(Equal([]string{"jdk"}))
	})
}
