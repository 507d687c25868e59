// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/NVIDIA/projver/pkg/defaults"
	apperrors "github.com/NVIDIA/projver/pkg/errors"
)

// Source tells where the version of a run came from.
type Source string

const (
	// SourceFlag is a version given on the command line.
	SourceFlag Source = "flag"
	// SourceTag is a version derived from the latest release tag.
	SourceTag Source = "git-tag"
	// SourceDefault is the fallback when no tag could be used.
	SourceDefault Source = "default"
)

// Runner executes a command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w, detail: %s",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// TagReader lists the tags of a git repository.
type TagReader struct {
	runner  Runner
	timeout time.Duration
}

// NewTagReader creates a TagReader. A nil runner uses ExecRunner.
func NewTagReader(runner Runner) *TagReader {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &TagReader{
		runner:  runner,
		timeout: defaults.GitCommandTimeout,
	}
}

// Tags returns the tags of the repository containing dir, newest first.
func (r *TagReader) Tags(ctx context.Context, dir string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.runner.Run(ctx, dir, "git", "tag", "--sort=-creatordate")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, "git tag timed out", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to list git tags", err)
	}

	var tags []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if tag := strings.TrimSpace(scanner.Text()); tag != "" {
			tags = append(tags, tag)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to read git tags", err)
	}
	return tags, nil
}

// TagLister is implemented by TagReader.
type TagLister interface {
	Tags(ctx context.Context, dir string) ([]string, error)
}

// AutoVersion derives a version from the newest release tag, a tag without
// a pre-release separator. When revision is zero the build component is
// incremented, so a release build never reuses the tagged version. Any
// failure yields defaults.FallbackVersion with SourceDefault.
func AutoVersion(ctx context.Context, tags TagLister, dir string, revision int) (string, Source) {
	list, err := tags.Tags(ctx, dir)
	if apperrors.HasCode(err, apperrors.ErrCodeTimeout) {
		slog.Warn("git tag timed out, using default version",
			"dir", dir,
			"error", err)
		return defaults.FallbackVersion, SourceDefault
	}
	if err != nil {
		slog.Warn("could not read git tags, using default version",
			"dir", dir,
			"error", err)
		return defaults.FallbackVersion, SourceDefault
	}

	tag, ok := latestRelease(list)
	if !ok {
		slog.Debug("no release tag found, using default version", "dir", dir)
		return defaults.FallbackVersion, SourceDefault
	}

	v, ok := fromTag(tag, revision)
	if !ok {
		slog.Warn("release tag is not a version, using default version",
			"tag", tag)
		return defaults.FallbackVersion, SourceDefault
	}

	slog.Debug("version derived from tag",
		"tag", tag,
		"projectVersion", v)
	return v, SourceTag
}

func latestRelease(tags []string) (string, bool) {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !strings.Contains(t, "-") {
			return t, true
		}
	}
	return "", false
}

// fromTag strips a leading "v" and any semver build metadata, then bumps the
// third component when revision is zero.
func fromTag(tag string, revision int) (string, bool) {
	v := strings.TrimPrefix(strings.TrimPrefix(tag, "v"), "V")
	if semver.IsValid("v" + v) {
		v = strings.TrimPrefix(semver.Canonical("v"+v), "v")
	}

	parts := strings.Split(v, ".")
	if len(parts) < 3 {
		return "", false
	}
	build, err := strconv.Atoi(parts[2])
	if err != nil || build < 0 {
		return "", false
	}
	if revision == 0 {
		parts[2] = strconv.Itoa(build + 1)
	}
	return strings.Join(parts, "."), true
}
