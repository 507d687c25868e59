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
	"strings"
	"testing"
)

// FuzzResolve performs fuzz testing on Resolve to find edge cases
func FuzzResolve(f *testing.F) {
	f.Add("1.0.15", 0)
	f.Add("1.0.15", 21)
	f.Add("256.256.65536", 0)
	f.Add("1.0.5-RC.1", 55757)
	f.Add("1.0.5-RC.1", 0)
	f.Add("-1,-1,-1", 0)
	f.Add("", 0)
	f.Add(".", 1)
	f.Add("1..2", 0)
	f.Add("1.2.3.4.5", 0)
	f.Add("a.b.c", 0)
	f.Add(" 1. 2.3", 0)
	f.Add("1.2.3-", 9)
	f.Add("2147483648.0.0", 0)

	f.Fuzz(func(t *testing.T, input string, revision int) {
		// Resolve should never panic
		v, err := Resolve(input, revision)

		separators := strings.Count(input, "-")
		if separators > 1 || revision < 0 || (separators == 1 && revision == 0) {
			if err == nil {
				t.Errorf("Resolve(%q, %d) expected error", input, revision)
			}
			return
		}
		if err != nil {
			t.Fatalf("Resolve(%q, %d) unexpected error: %v", input, revision, err)
		}

		if v.Major < MinMajor || v.Major > MaxMajor {
			t.Errorf("Resolve(%q) major out of range: %d", input, v.Major)
		}
		if v.Minor < 0 || v.Minor > MaxMinor {
			t.Errorf("Resolve(%q) minor out of range: %d", input, v.Minor)
		}
		if v.Build < 0 || v.Build > MaxBuild {
			t.Errorf("Resolve(%q) build out of range: %d", input, v.Build)
		}

		want := 3
		if revision != 0 {
			want = 4
		}
		if got := len(strings.Split(v.String(), ".")); got != want {
			t.Errorf("Resolve(%q, %d).String() = %q has %d components, want %d",
				input, revision, v.String(), got, want)
		}

		// Re-resolving the rendered form must be stable
		again, err := Resolve(v.String(), revision)
		if err != nil {
			t.Fatalf("re-resolving %q failed: %v", v.String(), err)
		}
		if again.String() != v.String() {
			t.Errorf("round-trip mismatch: %q != %q", again.String(), v.String())
		}
	})
}
