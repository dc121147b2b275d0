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

package packaging

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	cp "github.com/otiai10/copy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cnbtools/cnbkit/cnb"
	"github.com/cnbtools/cnbkit/internal"
	"github.com/cnbtools/cnbkit/log"
	"github.com/cnbtools/cnbkit/style"
)

// PackagingError describes a failed compilation or bundle assembly.  A failed
// child aborts packaging of every ancestor that depends on it.
type PackagingError struct {
	// Project is the path of the project that failed.
	Project string

	// Err is the underlying failure.
	Err error
}

func (p PackagingError) Error() string {
	return fmt.Sprintf("packaging %s: %s", p.Project, p.Err)
}

func (p PackagingError) Unwrap() error {
	return p.Err
}

// CacheKey identifies one compiled artifact within a run.  Projects appearing more
// than once in the graph share the compiled binary instead of rebuilding.
type CacheKey struct {
	// Path is the canonical project path.
	Path string

	// Target is the compilation target.
	Target string

	// Profile is the build profile.
	Profile string
}

type artifact struct {
	once sync.Once
	path string
	err  error
}

// Assembler packages resolved projects into on-disk buildpack bundles.
type Assembler struct {
	compiler Compiler
	logger   log.Logger
	workers  int
	profile  string

	mu           sync.Mutex
	artifacts    map[CacheKey]*artifact
	bundles      map[string]string
	compilations int

	cacheDir string
}

// AssemblerOption is a function for configuring an Assembler.
type AssemblerOption func(*Assembler)

// WithCompiler sets the Compiler implementation.
func WithCompiler(compiler Compiler) AssemblerOption {
	return func(a *Assembler) {
		a.compiler = compiler
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithWorkers bounds the number of concurrent compilations.
func WithWorkers(workers int) AssemblerOption {
	return func(a *Assembler) {
		if workers > 0 {
			a.workers = workers
		}
	}
}

// WithProfile sets the build profile recorded in the artifact cache key.
func WithProfile(profile string) AssemblerOption {
	return func(a *Assembler) {
		a.profile = profile
	}
}

// NewAssembler creates a new Assembler with a Go toolchain compiler, a discarding
// logger, and one worker per CPU, modified by options.
func NewAssembler(options ...AssemblerOption) *Assembler {
	a := &Assembler{
		logger:    log.NewDiscard(),
		workers:   runtime.NumCPU(),
		profile:   "release",
		artifacts: map[CacheKey]*artifact{},
		bundles:   map[string]string{},
	}

	for _, option := range options {
		option(a)
	}

	// the default compiler is built last so it logs through the configured logger
	if a.compiler == nil {
		a.compiler = GoCompiler{Logger: a.logger}
	}

	return a
}

// Compilations returns the number of compiler invocations performed so far.
func (a *Assembler) Compilations() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.compilations
}

// Assemble packages every project, dependencies first, into output.  Independent
// projects compile concurrently; a project's bundle is written to a temporary
// directory and renamed into place, so a failure never leaves a partial bundle.
// Returns the bundle directory per project path.
func (a *Assembler) Assemble(ctx context.Context, projects []*Project, target Target, output string) (map[string]string, error) {
	if err := os.MkdirAll(output, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", output)
	}

	a.cacheDir = filepath.Join(output, ".artifacts")
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating artifact cache %s", a.cacheDir)
	}

	remaining := make([]*Project, len(projects))
	copy(remaining, projects)

	for len(remaining) > 0 {
		var wave, rest []*Project
		for _, project := range remaining {
			if a.dependenciesAssembled(project) {
				wave = append(wave, project)
			} else {
				rest = append(rest, project)
			}
		}
		if len(wave) == 0 {
			return nil, errors.Errorf("dependency order cannot make progress; %d projects blocked", len(rest))
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.workers)

		for _, project := range wave {
			project := project
			g.Go(func() error {
				if err := a.assembleOne(gctx, project, target, output); err != nil {
					return PackagingError{Project: project.Path, Err: err}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		remaining = rest
	}

	bundles := map[string]string{}
	a.mu.Lock()
	for path, bundle := range a.bundles {
		bundles[path] = bundle
	}
	a.mu.Unlock()

	return bundles, nil
}

func (a *Assembler) dependenciesAssembled(project *Project) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, dependency := range project.Dependencies {
		if _, ok := a.bundles[dependency]; !ok {
			return false
		}
	}

	return true
}

func (a *Assembler) assembleOne(ctx context.Context, project *Project, target Target, output string) error {
	info := project.Descriptor.Info
	a.logger.Info(style.Step("Packaging %s", style.Symbol(info.FullName())))

	temp, err := os.MkdirTemp(output, ".assemble-*")
	if err != nil {
		return errors.Wrap(err, "creating staging directory")
	}
	defer os.RemoveAll(temp)

	if err := a.writeDescriptor(project, filepath.Join(temp, "buildpack.toml")); err != nil {
		return err
	}

	if project.Descriptor.IsMeta() {
		if err := a.nestChildren(project, temp); err != nil {
			return err
		}
	} else {
		if err := a.placeBinary(ctx, project, target, filepath.Join(temp, "bin")); err != nil {
			return err
		}
	}

	// keyed by id and version, like nested children, so two projects sharing an
	// id at different versions never collide on one bundle directory
	bundle := filepath.Join(output, escapeID(info.ID), info.Version)
	if err := os.RemoveAll(bundle); err != nil {
		return errors.Wrapf(err, "clearing bundle %s", bundle)
	}
	if err := os.MkdirAll(filepath.Dir(bundle), 0755); err != nil {
		return errors.Wrapf(err, "creating bundle parent %s", filepath.Dir(bundle))
	}
	if err := os.Rename(temp, bundle); err != nil {
		return errors.Wrapf(err, "committing bundle %s", bundle)
	}

	a.mu.Lock()
	a.bundles[project.Path] = bundle
	a.mu.Unlock()

	return nil
}

// writeDescriptor re-serializes the descriptor through the schema layer, dropping
// packaging-time uris so the packaged document carries id and version pairs only.
func (a *Assembler) writeDescriptor(project *Project, path string) error {
	descriptor := project.Descriptor
	descriptor.Order = nil

	for _, group := range project.Descriptor.Order {
		packaged := cnb.Order{}
		for _, entry := range group.Groups {
			if entry.URI != "" {
				child, err := a.childDescriptor(project, entry.URI)
				if err != nil {
					return err
				}
				entry.ID = child.Info.ID
				entry.Version = child.Info.Version
				entry.URI = ""
			}
			packaged.Groups = append(packaged.Groups, entry)
		}
		descriptor.Order = append(descriptor.Order, packaged)
	}

	if err := (internal.TOMLWriter{}).Write(path, descriptor); err != nil {
		return errors.Wrap(err, "writing descriptor")
	}

	return nil
}

// nestChildren copies each already-assembled child bundle into the composite's
// buildpacks directory, keyed by id and version so two parents sharing a child
// collide onto one copy.
func (a *Assembler) nestChildren(project *Project, temp string) error {
	for _, dependency := range project.Dependencies {
		a.mu.Lock()
		bundle, ok := a.bundles[dependency]
		a.mu.Unlock()
		if !ok {
			return errors.Errorf("child %s has not been assembled", style.Symbol(dependency))
		}

		child, err := cnb.ParseBuildpack(filepath.Join(bundle, "buildpack.toml"))
		if err != nil {
			return err
		}

		dest := filepath.Join(temp, "buildpacks", escapeID(child.Info.ID), child.Info.Version)
		if _, err := os.Stat(dest); err == nil {
			continue
		}

		if err := cp.Copy(bundle, dest); err != nil {
			return errors.Wrapf(err, "copying child bundle %s", bundle)
		}
	}

	return nil
}

// placeBinary compiles the project, reusing any artifact already produced for the
// same (path, target, profile) in this run, and lays out the two entry points:
// bin/build is the binary, bin/detect a relative symlink to it, or a copy where
// the filesystem lacks symlink support.
func (a *Assembler) placeBinary(ctx context.Context, project *Project, target Target, bin string) error {
	compiled, err := a.compiledArtifact(ctx, project, target)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(bin, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", bin)
	}

	build := filepath.Join(bin, "build")
	if err := os.Link(compiled, build); err != nil {
		if err := copyFile(compiled, build); err != nil {
			return err
		}
	}
	if err := os.Chmod(build, 0755); err != nil {
		return errors.Wrapf(err, "marking %s executable", build)
	}

	detect := filepath.Join(bin, "detect")
	if err := os.Symlink("build", detect); err != nil {
		if err := copyFile(compiled, detect); err != nil {
			return err
		}
		if err := os.Chmod(detect, 0755); err != nil {
			return errors.Wrapf(err, "marking %s executable", detect)
		}
	}

	return nil
}

func (a *Assembler) compiledArtifact(ctx context.Context, project *Project, target Target) (string, error) {
	key := CacheKey{Path: project.Path, Target: target.String(), Profile: a.profile}

	a.mu.Lock()
	art, ok := a.artifacts[key]
	if !ok {
		art = &artifact{}
		a.artifacts[key] = art
	}
	a.mu.Unlock()

	art.once.Do(func() {
		sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", key.Path, key.Target, key.Profile)))
		dest := filepath.Join(a.cacheDir, fmt.Sprintf("%x", sum[:8]))

		// compile beside the cache and rename, so a concurrently reading sibling
		// never observes a half-written artifact
		staging := dest + ".tmp"
		if art.err = a.compiler.Compile(ctx, project.Path, target, staging); art.err != nil {
			_ = os.Remove(staging)
			return
		}
		if art.err = os.Rename(staging, dest); art.err != nil {
			return
		}

		art.path = dest

		a.mu.Lock()
		a.compilations++
		a.mu.Unlock()
	})

	if art.err != nil {
		return "", art.err
	}

	return art.path, nil
}

func (a *Assembler) childDescriptor(project *Project, uri string) (cnb.Buildpack, error) {
	reference := uri
	if !filepath.IsAbs(reference) {
		reference = filepath.Join(project.Path, reference)
	}

	return cnb.ParseBuildpack(filepath.Join(filepath.Clean(reference), "buildpack.toml"))
}

// escapeID flattens a buildpack id into a single path segment, pack's convention
// for ids containing slashes.
func escapeID(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}

func copyFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copying %s to %s", src, dest)
	}

	return nil
}
