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

// Package packaging resolves a workspace of local buildpack projects into a build
// order and assembles each project into an on-disk buildpack bundle.
package packaging

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/cnbtools/cnbkit/cnb"
	"github.com/cnbtools/cnbkit/style"
)

// Project is one local buildpack project discovered in a workspace.
type Project struct {
	// Path is the canonical project directory.
	Path string

	// Descriptor is the parsed buildpack.toml.
	Descriptor cnb.Buildpack

	// Dependencies are the canonical paths of sibling projects referenced by a
	// meta-buildpack's order, in declaration order.
	Dependencies []string
}

// GraphError reports every problem found while resolving the dependency graph:
// reference cycles and order entries whose uri does not name a known project.  It
// is a configuration error, not a runtime fault.
type GraphError struct {
	// Cycles is the collection of reference cycles, each a path sequence ending
	// with the path that closed the cycle.
	Cycles [][]string

	// Unresolved is the collection of references that name no known project, as
	// "<project>: <uri>" pairs.
	Unresolved []string
}

func (g GraphError) Error() string {
	var problems []string

	for _, cycle := range g.Cycles {
		problems = append(problems, fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
	}
	for _, reference := range g.Unresolved {
		problems = append(problems, fmt.Sprintf("unresolved reference: %s", reference))
	}

	return strings.Join(problems, "; ")
}

// ResolveWorkspace discovers every buildpack project under root and returns them in
// build order: every dependency ahead of its dependents, ties broken by ascending
// path for reproducibility.
func ResolveWorkspace(root string) ([]*Project, error) {
	projects, err := discover(root)
	if err != nil {
		return nil, err
	}

	if err := resolveReferences(projects); err != nil {
		return nil, err
	}

	return order(projects)
}

// discover walks the workspace collecting every directory holding a buildpack.toml.
// Hidden directories are skipped; a project's own subdirectories are not descended
// into, so nested bundles from earlier runs are not mistaken for projects.
func discover(root string) (map[string]*Project, error) {
	projects := map[string]*Project{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		file := filepath.Join(path, "buildpack.toml")
		if _, statErr := os.Stat(file); statErr != nil {
			return nil
		}

		descriptor, parseErr := cnb.ParseBuildpack(file)
		if parseErr != nil {
			return parseErr
		}

		canonical, pathErr := filepath.Abs(path)
		if pathErr != nil {
			return errors.Wrapf(pathErr, "canonicalizing %s", path)
		}

		projects[canonical] = &Project{Path: canonical, Descriptor: descriptor}
		if path != root {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning workspace %s", root)
	}

	if len(projects) == 0 {
		return nil, errors.Errorf("no buildpack projects found under %s", style.Symbol(root))
	}

	return projects, nil
}

// resolveReferences turns each meta-buildpack's order uris into dependency edges.
// Every unresolved reference in the workspace is reported in one pass.
func resolveReferences(projects map[string]*Project) error {
	var unresolved []string

	for _, path := range sortedPaths(projects) {
		project := projects[path]

		for _, group := range project.Descriptor.Order {
			for _, entry := range group.Groups {
				if entry.URI == "" {
					continue
				}

				reference := entry.URI
				if !filepath.IsAbs(reference) {
					reference = filepath.Join(project.Path, reference)
				}
				reference = filepath.Clean(reference)

				if _, ok := projects[reference]; !ok {
					unresolved = append(unresolved, fmt.Sprintf("%s: %s", project.Path, entry.URI))
					continue
				}

				project.Dependencies = append(project.Dependencies, reference)
			}
		}
	}

	if len(unresolved) > 0 {
		return GraphError{Unresolved: unresolved}
	}

	return nil
}

// order produces a topological order of the graph, dependencies first.  Cycles are
// detected by depth-first traversal with a recursion stack; every cycle found in
// the pass is reported together.
func order(projects map[string]*Project) ([]*Project, error) {
	const (
		white = iota // unvisited
		gray         // on the recursion stack
		black        // done
	)

	colors := map[string]int{}
	var stack []string
	var cycles [][]string

	var visit func(path string)
	visit = func(path string) {
		colors[path] = gray
		stack = append(stack, path)

		for _, dependency := range projects[path].Dependencies {
			switch colors[dependency] {
			case white:
				visit(dependency)
			case gray:
				// the edge back to a gray node closes a cycle; record the stack
				// from that node on, plus the closing path
				start := 0
				for i, p := range stack {
					if p == dependency {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), dependency)
				cycles = append(cycles, cycle)
			}
		}

		stack = stack[:len(stack)-1]
		colors[path] = black
	}

	for _, path := range sortedPaths(projects) {
		if colors[path] == white {
			visit(path)
		}
	}

	if len(cycles) > 0 {
		return nil, GraphError{Cycles: cycles}
	}

	// Kahn's algorithm emitting the lexicographically smallest ready project first,
	// so equivalent orders are reproducible.
	emitted := map[string]bool{}
	var ordered []*Project

	for len(ordered) < len(projects) {
		var ready []string
		for _, path := range sortedPaths(projects) {
			if emitted[path] {
				continue
			}

			done := true
			for _, dependency := range projects[path].Dependencies {
				if !emitted[dependency] {
					done = false
					break
				}
			}
			if done {
				ready = append(ready, path)
			}
		}

		next := ready[0]
		emitted[next] = true
		ordered = append(ordered, projects[next])
	}

	return ordered, nil
}

func sortedPaths(projects map[string]*Project) []string {
	paths := make([]string, 0, len(projects))
	for path := range projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths
}
