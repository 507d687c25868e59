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

package solution

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/NVIDIA/projver/pkg/errors"
)

// Solution file extensions, in lookup order.
const (
	ExtSln  = ".sln"
	ExtSlnx = ".slnx"
)

// SolutionFolderType is the project type GUID of virtual solution folders.
const SolutionFolderType = "2150E333-8FDC-42A3-9474-1A3956D46DE8"

// Project("{type}") = "Name", "relative\path.csproj", "{guid}"
var slnProjectLine = regexp.MustCompile(`^\s*Project\("\{([0-9A-Fa-f-]+)\}"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"\s*,\s*"\{([0-9A-Fa-f-]+)\}"`)

// Project is one entry of a solution.
type Project struct {
	Name string `json:"name" yaml:"name"`
	// Path is absolute and uses the OS separator.
	Path string `json:"path" yaml:"path"`
}

// Solution is the list of projects declared in a solution file.
type Solution struct {
	Path     string    `json:"path" yaml:"path"`
	Projects []Project `json:"projects" yaml:"projects"`
}

// ProjectPaths returns the project paths in manifest order.
func (s *Solution) ProjectPaths() []string {
	paths := make([]string, 0, len(s.Projects))
	for _, p := range s.Projects {
		paths = append(paths, p.Path)
	}
	return paths
}

// Find returns the solution file in workspace: the first *.sln in lexical
// order, otherwise the first *.slnx.
func Find(workspace string) (string, error) {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeNotFound,
			"failed to read workspace", err, map[string]any{"workspace": workspace})
	}

	for _, ext := range []string{ExtSln, ExtSlnx} {
		// ReadDir returns entries sorted by name
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
				return filepath.Join(workspace, e.Name()), nil
			}
		}
	}

	return "", apperrors.NewWithContext(apperrors.ErrCodeNotFound,
		"no solution file found in workspace", map[string]any{"workspace": workspace})
}

// Load reads the solution at path. The format is chosen by extension.
func Load(path string) (*Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeDocumentLoad,
			"failed to read solution file", err, map[string]any{"path": path})
	}

	var projects []Project
	if strings.EqualFold(filepath.Ext(path), ExtSlnx) {
		projects, err = parseSlnx(data)
	} else {
		projects, err = parseSln(data)
	}
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeDocumentLoad,
			fmt.Sprintf("failed to parse solution %q", path), err, map[string]any{"path": path})
	}

	dir := filepath.Dir(path)
	for i := range projects {
		projects[i].Path = resolvePath(dir, projects[i].Path)
	}

	return &Solution{Path: path, Projects: projects}, nil
}

func parseSln(data []byte) ([]Project, error) {
	var projects []Project
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := slnProjectLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		typeID, name, rel := m[1], m[2], m[3]
		if strings.EqualFold(typeID, SolutionFolderType) || !isFilePath(rel) {
			continue
		}
		projects = append(projects, Project{Name: name, Path: rel})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan solution: %w", err)
	}
	return projects, nil
}

// parseSlnx collects the Project elements of an XML solution in document
// order, at any folder depth.
func parseSlnx(data []byte) ([]Project, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var projects []Project
	depth := 0
	root := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode slnx: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if root || t.Name.Local != "Solution" {
					return nil, fmt.Errorf("unexpected root element %q", t.Name.Local)
				}
				root = true
			}
			if depth > 1 && t.Name.Local == "Project" {
				rel := attr(t, "Path")
				if rel == "" || !isFilePath(rel) {
					continue
				}
				base := baseName(rel)
				projects = append(projects, Project{
					Name: strings.TrimSuffix(base, filepath.Ext(base)),
					Path: rel,
				})
			}
		case xml.EndElement:
			depth--
		}
	}
	if !root {
		return nil, errors.New("slnx document has no Solution element")
	}
	return projects, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// isFilePath rejects web site entries, which reference a URL instead of a file.
func isFilePath(p string) bool {
	return !strings.Contains(p, "://")
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func resolvePath(dir, rel string) string {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(dir, rel)
}
