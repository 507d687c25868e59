/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/projver/pkg/serializer"
)

const (
	name           = "projver"
	versionDefault = "dev"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 2
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Report file path (default: stdout)",
	Sources: cli.EnvVars("PROJVER_OUTPUT"),
}

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"t"},
	Value:   string(serializer.FormatYAML),
	Usage:   fmt.Sprintf("Report format (supported values: %v)", serializer.SupportedFormats()),
	Sources: cli.EnvVars("PROJVER_FORMAT"),
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Stamp a version into the projects of a solution",
		Description: fmt.Sprintf(`Writes Version and ProductVersion into every SDK-style project of a solution,
and PackageVersion into projects that build a NuGet package. Other projects
are left untouched.

When --version is not given, the newest git release tag is used with its build
number incremented for release builds, falling back to 1.0.0.

Build: %s (commit %s, %s)`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "version",
				Usage:   "Version to apply, Major.Minor[.Build][-Label] (default: derived from git tags)",
				Sources: cli.EnvVars("PROJVER_VERSION"),
			},
			&cli.IntFlag{
				Name:    "revision",
				Usage:   "Revision (build counter); required for pre-release versions",
				Sources: cli.EnvVars("PROJVER_REVISION"),
			},
			&cli.StringFlag{
				Name:    "workspace",
				Usage:   "Directory containing the solution (default: current directory)",
				Sources: cli.EnvVars("PROJVER_WORKSPACE"),
			},
			&cli.StringFlag{
				Name:    "solution-filepath",
				Usage:   "Solution file (default: first *.sln, then *.slnx, in the workspace)",
				Sources: cli.EnvVars("PROJVER_SOLUTION_FILEPATH"),
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "Report the changes without writing any project",
				Sources: cli.EnvVars("PROJVER_DRY_RUN"),
			},
			outputFlag,
			formatFlag,
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("PROJVER_LOG_LEVEL"),
			},
		},
		Action: updateAction,
	}
}

// Execute runs the root command with os.Args and exits the process.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().Run(ctx, os.Args)
	code := exitCode(ctx, err)
	if err != nil {
		if code == ExitInterrupted {
			fmt.Fprintln(os.Stderr, "interrupted, stopped before completing all projects")
		}
		fmt.Fprintln(os.Stderr, err)
	}

	stop()
	os.Exit(code)
}

func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
