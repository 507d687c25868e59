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

package defaults

import "time"

// Version control timeouts for external commands.
const (
	// GitCommandTimeout is the timeout for a single git invocation.
	// Callers should respect parent context deadlines when shorter.
	GitCommandTimeout = 15 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLIRunTimeout bounds a whole update run, including git lookups
	// and all project rewrites.
	CLIRunTimeout = 5 * time.Minute
)

// Fallback values.
const (
	// FallbackVersion is used when no explicit version is supplied and
	// no usable tag can be read.
	FallbackVersion = "1.0.0"
)
