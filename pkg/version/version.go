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

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/NVIDIA/projver/pkg/errors"
)

// Error types for version resolution failures
var (
	ErrTooManySeparators    = errors.New("version has more than one pre-release separator")
	ErrLabelWithoutRevision = errors.New("pre-release version requires a non-zero revision number")
	ErrNegativeRevision     = errors.New("revision cannot be negative")
)

// Component limits accepted by MSI product versions.
const (
	MinMajor = 1
	MaxMajor = 255
	MaxMinor = 255
	MaxBuild = 65535
)

const labelSeparator = "-"

// Version is a resolved four-part version. Major, Minor and Build are always
// within the MSI limits. Revision is zero for releases.
type Version struct {
	Major    int `json:"major" yaml:"major"`
	Minor    int `json:"minor" yaml:"minor"`
	Build    int `json:"build" yaml:"build"`
	Revision int `json:"revision,omitempty" yaml:"revision,omitempty"`

	// Label is the pre-release text after the separator. HasLabel
	// distinguishes "1.0.0-" (empty label) from "1.0.0".
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	HasLabel bool   `json:"-" yaml:"-"`
}

// Default is used whenever the base version cannot be parsed.
func Default() Version {
	return Version{Major: 1}
}

// String renders Major.Minor.Build, plus .Revision when it is non-zero.
// The label is never included.
func (v Version) String() string {
	if v.Revision != 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// PackageString renders String() with the pre-release label appended.
func (v Version) PackageString() string {
	if v.HasLabel {
		return v.String() + labelSeparator + v.Label
	}
	return v.String()
}

// Resolve turns a loosely formatted version string and a revision into a
// Version. Only the separator and revision rules are errors; an unparseable
// base version silently becomes 1.0.0 and out of range components are clamped.
//
// Returned errors carry apperrors.ErrCodeInvalidFormat and wrap one of the
// Err* sentinels of this package.
func Resolve(input string, revision int) (Version, error) {
	if strings.Count(input, labelSeparator) > 1 {
		return Version{}, invalid(input, revision, ErrTooManySeparators)
	}

	base, label, hasLabel := strings.Cut(input, labelSeparator)
	if hasLabel && revision == 0 {
		return Version{}, invalid(input, revision, ErrLabelWithoutRevision)
	}
	if revision < 0 {
		return Version{}, invalid(input, revision, ErrNegativeRevision)
	}

	v, ok := parseBase(base)
	if !ok {
		v = Default()
	}

	v.Major = clamp(v.Major, MinMajor, MaxMajor)
	v.Minor = clamp(v.Minor, 0, MaxMinor)
	v.Build = clamp(v.Build, 0, MaxBuild)
	v.Revision = revision
	v.Label = label
	v.HasLabel = hasLabel
	return v, nil
}

// parseBase accepts two to four dot separated non-negative 32-bit decimals.
// A missing build component is zero; a fourth component is parsed but dropped
// by the caller.
func parseBase(s string) (Version, bool) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, false
	}

	nums := make([]int, len(parts))
	for i, part := range parts {
		n, ok := parseComponent(part)
		if !ok {
			return Version{}, false
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1]}
	if len(nums) > 2 {
		v.Build = nums[2]
	}
	return v, true
}

func parseComponent(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

func invalid(input string, revision int, cause error) error {
	return apperrors.WrapWithContext(apperrors.ErrCodeInvalidFormat,
		fmt.Sprintf("invalid version format %q, expected Major.Minor.Build[-Suffix]", input),
		cause,
		map[string]any{
			"version":  input,
			"revision": revision,
		})
}
