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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cnbtools/cnbkit/log"
	"github.com/cnbtools/cnbkit/packaging"
	"github.com/cnbtools/cnbkit/style"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Error("ERROR: %s", err))
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cnbkit",
		Short:         "Package local buildpack projects into distributable bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(packageCommand())

	return root
}

func packageCommand() *cobra.Command {
	var (
		targetFlag string
		output     string
		workers    int
		profile    string
	)

	cmd := &cobra.Command{
		Use:   "package <workspace>",
		Short: "Resolve and package every buildpack project under a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := packaging.ParseTarget(targetFlag)
			if err != nil {
				return err
			}

			projects, err := packaging.ResolveWorkspace(args[0])
			if err != nil {
				return err
			}

			logger := log.New(cmd.OutOrStdout())
			assembler := packaging.NewAssembler(
				packaging.WithLogger(logger),
				packaging.WithWorkers(workers),
				packaging.WithProfile(profile),
			)

			bundles, err := assembler.Assemble(cmd.Context(), projects, target, output)
			if err != nil {
				return err
			}

			logger.Infof("Packaged %d buildpacks into %s", len(bundles), style.Symbol(output))
			return nil
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "linux/amd64", "compilation target, os/arch[/variant]")
	cmd.Flags().StringVarP(&output, "output", "o", "packaged", "output directory for assembled bundles")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "maximum concurrent compilations")
	cmd.Flags().StringVar(&profile, "profile", "release", "build profile recorded in the artifact cache key")

	return cmd
}
