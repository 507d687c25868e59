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

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/projver/pkg/errors"
	"github.com/NVIDIA/projver/pkg/header"
	"github.com/NVIDIA/projver/pkg/project"
	"github.com/NVIDIA/projver/pkg/serializer"
	"github.com/NVIDIA/projver/pkg/vcs"
)

const (
	appProject = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <GeneratePackageOnBuild>true</GeneratePackageOnBuild>
  </PropertyGroup>
</Project>
`
	setupProject = `<Project Sdk="WixToolset.Sdk/4.0.5">
  <PropertyGroup>
    <OutputType>Package</OutputType>
  </PropertyGroup>
</Project>
`
	legacyProject = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="15.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <OutputType>Library</OutputType>
  </PropertyGroup>
</Project>
`
	testSolution = "Microsoft Visual Studio Solution File, Format Version 12.00\n" +
		"Project(\"{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}\") = \"App\", \"src\\App\\App.csproj\", \"{11111111-1111-1111-1111-111111111111}\"\n" +
		"EndProject\n" +
		"Project(\"{B7DD6F7E-DEF8-4E67-B5B7-07EF123DB6F0}\") = \"Setup\", \"installer\\Setup.wixproj\", \"{44444444-4444-4444-4444-444444444444}\"\n" +
		"EndProject\n" +
		"Project(\"{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}\") = \"Legacy\", \"src\\Legacy\\Legacy.csproj\", \"{55555555-5555-5555-5555-555555555555}\"\n" +
		"EndProject\n"
)

type fakeTags struct {
	tags []string
	err  error
}

func (f fakeTags) Tags(context.Context, string) ([]string, error) { return f.tags, f.err }

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Product.sln":              testSolution,
		"src/App/App.csproj":       appProject,
		"installer/Setup.wixproj":  setupProject,
		"src/Legacy/Legacy.csproj": legacyProject,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func readProject(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRunUpdate(t *testing.T) {
	dir := writeWorkspace(t)

	report, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "1.0.5-RC.1",
		revision:  55757,
		workspace: dir,
	}, fakeTags{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Product.sln"), report.Solution)
	assert.Equal(t, vcs.SourceFlag, report.Source)
	assert.Equal(t, header.KindUpdateReport, report.Kind)
	assert.Equal(t, "Product.sln", report.Metadata[header.MetadataSolution])
	assert.Nil(t, report.Failure)
	require.Len(t, report.Projects, 3)

	assert.Equal(t, project.KindNuGet, report.Projects[0].Kind)
	assert.Equal(t, "1.0.5.55757-RC.1", report.Projects[0].PackageVersion)
	assert.Equal(t, project.KindPlain, report.Projects[1].Kind)
	assert.Equal(t, project.KindUnrecognized, report.Projects[2].Kind)

	assert.Contains(t, readProject(t, dir, "src/App/App.csproj"), "<PackageVersion>1.0.5.55757-RC.1</PackageVersion>")
	setup := readProject(t, dir, "installer/Setup.wixproj")
	assert.Contains(t, setup, "<ProductVersion>1.0.5.55757</ProductVersion>")
	assert.NotContains(t, setup, "PackageVersion")
	assert.Equal(t, legacyProject, readProject(t, dir, "src/Legacy/Legacy.csproj"))
}

func TestRunUpdate_VersionFromTags(t *testing.T) {
	tests := []struct {
		name       string
		tags       fakeTags
		revision   int
		want       string
		wantSource vcs.Source
	}{
		{"release bumps build", fakeTags{tags: []string{"v1.2.0-rc.1", "v1.1.9"}}, 0, "1.1.10", vcs.SourceTag},
		{"revision keeps build", fakeTags{tags: []string{"1.1.9"}}, 3, "1.1.9", vcs.SourceTag},
		{"git failure", fakeTags{err: errors.New("not a git repository")}, 0, "1.0.0", vcs.SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeWorkspace(t)

			report, err := runUpdate(t.Context(), &updateCmdOptions{
				revision:  tt.revision,
				workspace: dir,
			}, tt.tags)
			require.NoError(t, err)

			assert.Equal(t, tt.want, report.Version)
			assert.Equal(t, tt.wantSource, report.Source)
		})
	}
}

func TestRunUpdate_StopsAtFirstFailure(t *testing.T) {
	dir := writeWorkspace(t)
	broken := filepath.Join(dir, "installer", "Setup.wixproj")
	require.NoError(t, os.WriteFile(broken, []byte("<Project Sdk=\"WixToolset.Sdk\">"), 0o600))

	report, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "2.0.0",
		workspace: dir,
	}, fakeTags{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDocumentLoad))

	require.NotNil(t, report)
	require.Len(t, report.Projects, 1)
	assert.True(t, report.Projects[0].Written)
}

func TestRunUpdate_InvalidVersion(t *testing.T) {
	dir := writeWorkspace(t)

	_, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "1.0.5-RC.1",
		workspace: dir,
	}, fakeTags{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat))
	assert.Equal(t, appProject, readProject(t, dir, "src/App/App.csproj"))
}

func TestRunUpdate_DryRun(t *testing.T) {
	dir := writeWorkspace(t)

	report, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "3.0.0",
		workspace: dir,
		dryRun:    true,
	}, fakeTags{})
	require.NoError(t, err)

	assert.True(t, report.Projects[0].Changed)
	assert.False(t, report.Projects[0].Written)
	assert.Equal(t, appProject, readProject(t, dir, "src/App/App.csproj"))
	assert.Equal(t, setupProject, readProject(t, dir, "installer/Setup.wixproj"))
}

func TestRunUpdate_Canceled(t *testing.T) {
	dir := writeWorkspace(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := runUpdate(ctx, &updateCmdOptions{
		version:   "3.0.0",
		workspace: dir,
	}, fakeTags{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Projects)
	assert.Equal(t, ExitInterrupted, exitCode(ctx, err))
}

func TestRunUpdate_NoSolution(t *testing.T) {
	report, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "1.0.0",
		workspace: t.TempDir(),
	}, fakeTags{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestRootCmd(t *testing.T) {
	dir := writeWorkspace(t)
	out := filepath.Join(t.TempDir(), "report.json")

	err := newRootCmd().Run(context.Background(), []string{
		name,
		"--workspace", dir,
		"--solution-filepath", filepath.Join(dir, "Product.sln"),
		"--version", "1.0.15",
		"--revision", "21",
		"-o", out,
		"-t", "json",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report struct {
		Version  string `json:"version"`
		Source   string `json:"source"`
		Revision int    `json:"revision"`
		Projects []struct {
			Kind    string `json:"kind"`
			Version string `json:"version"`
			Written bool   `json:"written"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "1.0.15", report.Version)
	assert.Equal(t, "flag", report.Source)
	assert.Equal(t, 21, report.Revision)
	require.Len(t, report.Projects, 3)
	assert.Equal(t, "nuget", report.Projects[0].Kind)
	assert.Equal(t, "1.0.15.21", report.Projects[0].Version)
	assert.True(t, report.Projects[0].Written)
	assert.Equal(t, "unrecognized", report.Projects[2].Kind)
}

func TestRootCmd_EnvSources(t *testing.T) {
	dir := writeWorkspace(t)
	out := filepath.Join(t.TempDir(), "report.yaml")

	t.Setenv("PROJVER_WORKSPACE", dir)
	t.Setenv("PROJVER_VERSION", "4.5.6")
	t.Setenv("PROJVER_DRY_RUN", "true")
	t.Setenv("PROJVER_OUTPUT", out)

	require.NoError(t, newRootCmd().Run(context.Background(), []string{name}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 4.5.6")
	assert.Contains(t, string(data), "dryRun: true")
	assert.Equal(t, appProject, readProject(t, dir, "src/App/App.csproj"))
}

func TestRootCmd_ReportsFailure(t *testing.T) {
	dir := writeWorkspace(t)
	broken := filepath.Join(dir, "installer", "Setup.wixproj")
	require.NoError(t, os.WriteFile(broken, []byte("<Project Sdk=\"WixToolset.Sdk\">"), 0o600))
	out := filepath.Join(t.TempDir(), "report.json")

	err := newRootCmd().Run(context.Background(), []string{
		name,
		"--workspace", dir,
		"--version", "2.0.0",
		"-o", out,
		"-t", "json",
	})
	require.Error(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report struct {
		Metadata map[string]string `json:"metadata"`
		Projects []json.RawMessage `json:"projects"`
		Failure  *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"failure"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "Product.sln", report.Metadata["solution"])
	assert.Len(t, report.Projects, 1)
	require.NotNil(t, report.Failure)
	assert.Equal(t, string(apperrors.ErrCodeDocumentLoad), report.Failure.Code)
	assert.Contains(t, report.Failure.Message, "Setup.wixproj")
}

func TestRootCmd_InvalidFormat(t *testing.T) {
	dir := writeWorkspace(t)

	err := newRootCmd().Run(context.Background(), []string{
		name, "--workspace", dir, "--version", "1.0.0", "--format", "xml",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
	assert.Equal(t, ExitFailure, exitCode(context.Background(), err))
	assert.Equal(t, appProject, readProject(t, dir, "src/App/App.csproj"))
}

func TestReportTable(t *testing.T) {
	dir := writeWorkspace(t)
	report, err := runUpdate(t.Context(), &updateCmdOptions{
		version:   "1.2.3",
		workspace: dir,
		dryRun:    true,
	}, fakeTags{})
	require.NoError(t, err)

	rows := report.TableRows()
	require.Len(t, rows, 3)
	assert.Equal(t, len(report.TableHeader()), len(rows[0]))
	assert.Equal(t, filepath.Join("src", "App", "App.csproj"), rows[0][0])
	assert.Equal(t, []string{"unrecognized", "-", "-", "false", "false"}, rows[2][1:])

	var buf strings.Builder
	w := serializer.NewWriter(serializer.FormatTable, &buf)
	require.NoError(t, w.Serialize(t.Context(), report))
	assert.True(t, strings.HasPrefix(buf.String(), "PROJECT"))
}

func TestExitCode(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, ExitOK, exitCode(context.Background(), nil))
	assert.Equal(t, ExitFailure, exitCode(context.Background(), errors.New("boom")))
	assert.Equal(t, ExitInterrupted, exitCode(canceled, errors.New("boom")))
	assert.Equal(t, ExitInterrupted, exitCode(context.Background(), context.Canceled))
}
