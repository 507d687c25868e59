/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/projver/pkg/defaults"
	apperrors "github.com/NVIDIA/projver/pkg/errors"
	"github.com/NVIDIA/projver/pkg/header"
	"github.com/NVIDIA/projver/pkg/logging"
	"github.com/NVIDIA/projver/pkg/project"
	"github.com/NVIDIA/projver/pkg/serializer"
	"github.com/NVIDIA/projver/pkg/solution"
	"github.com/NVIDIA/projver/pkg/vcs"
)

// updateCmdOptions holds parsed flag values of the root command.
type updateCmdOptions struct {
	version      string
	revision     int
	workspace    string
	solutionPath string
	dryRun       bool
	output       string
	format       serializer.Format
	logLevel     string
}

// Report summarizes one run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Solution string            `json:"solution" yaml:"solution"`
	Version  string            `json:"version" yaml:"version"`
	Source   vcs.Source        `json:"source" yaml:"source"`
	Revision int               `json:"revision" yaml:"revision"`
	DryRun   bool              `json:"dryRun" yaml:"dryRun"`
	Projects []*project.Result `json:"projects" yaml:"projects"`
	Failure  *Failure          `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Failure records why a run stopped early.
type Failure struct {
	Code    apperrors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Message string              `json:"message" yaml:"message"`
}

// TableHeader implements serializer.Tabular.
func (r *Report) TableHeader() []string {
	return []string{"PROJECT", "KIND", "VERSION", "PACKAGE VERSION", "CHANGED", "WRITTEN"}
}

// TableRows implements serializer.Tabular.
func (r *Report) TableRows() [][]string {
	dir := filepath.Dir(r.Solution)
	rows := make([][]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		path := p.Path
		if rel, err := filepath.Rel(dir, p.Path); err == nil {
			path = rel
		}
		rows = append(rows, []string{
			path,
			p.Kind.String(),
			orDash(p.Version),
			orDash(p.PackageVersion),
			strconv.FormatBool(p.Changed),
			strconv.FormatBool(p.Written),
		})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parseUpdateCmdOptions parses and validates command options.
func parseUpdateCmdOptions(cmd *cli.Command) (*updateCmdOptions, error) {
	opts := &updateCmdOptions{
		version:      cmd.String("version"),
		revision:     int(cmd.Int("revision")),
		workspace:    cmd.String("workspace"),
		solutionPath: cmd.String("solution-filepath"),
		dryRun:       cmd.Bool("dry-run"),
		output:       cmd.String("output"),
		logLevel:     cmd.String("log-level"),
	}

	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return nil, err
	}
	opts.format = format

	if opts.workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to get working directory", err)
		}
		opts.workspace = wd
	}
	if opts.workspace, err = filepath.Abs(opts.workspace); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid --workspace", err)
	}

	if opts.solutionPath != "" {
		if opts.solutionPath, err = filepath.Abs(opts.solutionPath); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid --solution-filepath", err)
		}
	}

	return opts, nil
}

func updateAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := parseUpdateCmdOptions(cmd)
	if err != nil {
		return err
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version, opts.logLevel)
	slog.Debug("starting",
		"name", name,
		"commit", commit,
		"date", date)

	ctx, cancel := context.WithTimeout(ctx, defaults.CLIRunTimeout)
	defer cancel()

	report, runErr := runUpdate(ctx, opts, vcs.NewTagReader(nil))
	if report == nil {
		return runErr
	}
	if runErr != nil {
		report.Failure = &Failure{Code: apperrors.CodeOf(runErr), Message: runErr.Error()}
	}

	ser, err := serializer.NewFileWriter(opts.format, opts.output)
	if err != nil {
		if runErr != nil {
			return runErr
		}
		return err
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	// the report is written even for a failed run, without the remaining projects
	if err := ser.Serialize(context.WithoutCancel(ctx), report); err != nil && runErr == nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return runErr
}

// runUpdate stamps the version into every project of the solution, in
// manifest order, stopping at the first failure. The returned report covers
// the projects processed so far; it is nil when the solution could not be
// loaded.
func runUpdate(ctx context.Context, opts *updateCmdOptions, tags vcs.TagLister) (*Report, error) {
	slnPath := opts.solutionPath
	if slnPath == "" {
		found, err := solution.Find(opts.workspace)
		if err != nil {
			return nil, err
		}
		slnPath = found
	}

	sln, err := solution.Load(slnPath)
	if err != nil {
		return nil, err
	}

	ver, source := opts.version, vcs.SourceFlag
	if ver == "" {
		ver, source = vcs.AutoVersion(ctx, tags, opts.workspace, opts.revision)
	}

	slog.Info("updating solution",
		"solution", sln.Path,
		"projects", len(sln.Projects),
		"projectVersion", ver,
		"source", string(source),
		"revision", opts.revision,
		"dryRun", opts.dryRun)

	hdr := header.New(header.KindUpdateReport, version,
		header.WithMetadata(header.MetadataSolution, filepath.Base(sln.Path)))
	report := &Report{
		Header:   hdr,
		Solution: sln.Path,
		Version:  ver,
		Source:   source,
		Revision: opts.revision,
		DryRun:   opts.dryRun,
		Projects: make([]*project.Result, 0, len(sln.Projects)),
	}

	updater := project.NewUpdater(project.WithDryRun(opts.dryRun))
	for _, path := range sln.ProjectPaths() {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("stopped before %s: %w", filepath.Base(path), err)
		}

		res, err := updater.Process(path, ver, opts.revision)
		if err != nil {
			return report, err
		}
		report.Projects = append(report.Projects, res)
	}

	written := 0
	for _, p := range report.Projects {
		if p.Written {
			written++
		}
	}
	slog.Info("solution updated",
		"projects", len(report.Projects),
		"written", written)

	return report, nil
}
