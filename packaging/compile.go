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
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/cnbtools/cnbkit/log"
	"github.com/cnbtools/cnbkit/style"
)

// Target is the compilation target, "os/arch" with an optional variant,
// e.g. "linux/amd64" or "linux/arm/v6".
type Target struct {
	// OS is the target operating system.
	OS string

	// Arch is the target architecture.
	Arch string

	// ArchVariant is the optional architecture variant.
	ArchVariant string
}

// ParseTarget parses a target from its "os/arch[/variant]" form.
func ParseTarget(t string) (Target, error) {
	parts := strings.Split(t, "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Target{}, errors.Errorf("target %s must be of the form os/arch[/variant]", style.Symbol(t))
	}

	target := Target{OS: parts[0], Arch: parts[1]}
	if len(parts) == 3 {
		target.ArchVariant = parts[2]
	}

	return target, nil
}

func (t Target) String() string {
	s := fmt.Sprintf("%s/%s", t.OS, t.Arch)
	if t.ArchVariant != "" {
		s = fmt.Sprintf("%s/%s", s, t.ArchVariant)
	}

	return s
}

// Compiler is the documented boundary to the compiler toolchain: build the
// executable for one project at one target.  Implementations must be safe for
// concurrent use, as independent projects compile in parallel.
type Compiler interface {
	Compile(ctx context.Context, src string, target Target, dest string) error
}

// GoCompiler builds buildpack binaries with the Go toolchain, cross-compiling via
// GOOS and GOARCH.
type GoCompiler struct {
	// Logger receives toolchain output at debug level.
	Logger log.Logger
}

// Compile builds the module at src into a static executable at dest.
func (c GoCompiler) Compile(ctx context.Context, src string, target Target, dest string) error {
	cmd := exec.CommandContext(ctx, "go", "build", "-o", dest, ".")
	cmd.Dir = src
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GOOS=%s", target.OS),
		fmt.Sprintf("GOARCH=%s", target.Arch),
		"CGO_ENABLED=0",
	)
	if target.ArchVariant != "" && target.Arch == "arm" {
		cmd.Env = append(cmd.Env, fmt.Sprintf("GOARM=%s", strings.TrimPrefix(target.ArchVariant, "v")))
	}

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		c.Logger.Debugf("%s", output)
	}
	if err != nil {
		return errors.Wrapf(err, "compiling %s for %s: %s", style.Symbol(src), style.Symbol(target.String()), strings.TrimSpace(string(output)))
	}

	return nil
}
