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

package project

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/NVIDIA/projver/pkg/errors"
	"github.com/NVIDIA/projver/pkg/version"
	"github.com/NVIDIA/projver/pkg/xmldoc"
)

const defaultFileMode fs.FileMode = 0o644

// FileSystem reads and replaces whole files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// Result describes what Process did with one project file.
type Result struct {
	Path           string `json:"path" yaml:"path"`
	Sdk            string `json:"sdk,omitempty" yaml:"sdk,omitempty"`
	Kind           Kind   `json:"kind" yaml:"kind"`
	Version        string `json:"version,omitempty" yaml:"version,omitempty"`
	PackageVersion string `json:"packageVersion,omitempty" yaml:"packageVersion,omitempty"`
	// Changed is true when the serialized document differs from the file.
	Changed bool `json:"changed" yaml:"changed"`
	// Written is true when the file on disk was replaced.
	Written bool `json:"written" yaml:"written"`
}

// Option configures an Updater.
type Option func(*Updater)

// WithFileSystem sets the file system used to read and write projects.
// Default is the local disk.
func WithFileSystem(fsys FileSystem) Option {
	return func(u *Updater) {
		u.fs = fsys
	}
}

// WithDryRun computes the changes without writing them.
// Default is false.
func WithDryRun(dryRun bool) Option {
	return func(u *Updater) {
		u.dryRun = dryRun
	}
}

// Updater rewrites the version fields of project files.
type Updater struct {
	fs     FileSystem
	dryRun bool
}

// NewUpdater creates an Updater with the provided options.
func NewUpdater(opts ...Option) *Updater {
	u := &Updater{
		fs: OSFileSystem{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Process loads the project at path, writes the resolved version into the
// fields that apply to its kind and saves it. Projects without a supported
// Sdk are left untouched and are not an error.
//
// Failures carry apperrors.ErrCodeDocumentLoad when the file cannot be read
// or parsed, and apperrors.ErrCodeInvalidFormat when the version is rejected.
// Nothing is written when an error is returned.
func (u *Updater) Process(path, rawVersion string, revision int) (*Result, error) {
	original, err := u.fs.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeDocumentLoad,
			"failed to read project file", err, map[string]any{"path": path})
	}

	doc, err := xmldoc.Parse(original)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeDocumentLoad,
			fmt.Sprintf("unexpected content in %q", path), err, map[string]any{"path": path})
	}

	res := &Result{Path: path}
	res.Sdk, _ = doc.Root.Attribute(SdkAttribute)

	kind, group := Classify(doc)
	res.Kind = kind
	if kind == KindUnrecognized {
		slog.Debug("skipping project without supported sdk",
			"path", path,
			"sdk", res.Sdk)
		return res, nil
	}

	v, err := version.Resolve(rawVersion, revision)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", path, err)
	}

	if group == nil {
		slog.Debug("adding property group to project without one",
			"path", path)
		group = doc.Root.AppendElement(PropertyGroupElement, "")
	}
	for _, f := range kind.fields() {
		upsert(group, f.name, f.value(v))
	}

	res.Version = v.String()
	if kind == KindNuGet {
		res.PackageVersion = v.PackageString()
	}

	updated := doc.Bytes()
	res.Changed = !bytes.Equal(original, updated)
	if !res.Changed || u.dryRun {
		slog.Debug("project not written",
			"path", path,
			"changed", res.Changed,
			"dryRun", u.dryRun)
		return res, nil
	}

	if err := u.fs.WriteFile(path, updated, u.fileMode(path)); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
			"failed to write project file", err, map[string]any{"path": path})
	}
	res.Written = true

	slog.Info("updated project",
		"file", filepath.Base(path),
		"kind", kind.String(),
		"projectVersion", res.Version,
		"packageVersion", res.PackageVersion)
	return res, nil
}

func (u *Updater) fileMode(path string) fs.FileMode {
	info, err := u.fs.Stat(path)
	if err != nil {
		return defaultFileMode
	}
	return info.Mode().Perm()
}

// upsert sets the value of the first child named name, appending the child
// when it does not exist yet.
func upsert(group *xmldoc.Element, name, value string) {
	if el := group.Child(xml.Name{Space: group.Name.Space, Local: name}); el != nil {
		el.SetText(value)
		return
	}
	group.AppendElement(name, value)
}
