// Package cli implements the projver command-line interface.
//
// # Usage
//
//	projver [--version 1.4.0-rc.1] [--revision 17] [--workspace DIR]
//	        [--solution-filepath FILE] [--dry-run]
//	        [--output FILE] [--format yaml|json|table] [--log-level LEVEL]
//
// The solution is taken from --solution-filepath, or found in the workspace
// (first *.sln, then *.slnx). Every project it lists is processed in order
// and the run stops at the first project that fails. A report of the
// processed projects is written to --output (default: stdout), also after a
// failure.
//
// Without --version the version comes from the newest git release tag of the
// workspace, see package vcs.
//
// # Environment
//
// Every flag can be set through an environment variable named after it:
// PROJVER_VERSION, PROJVER_REVISION, PROJVER_WORKSPACE,
// PROJVER_SOLUTION_FILEPATH, PROJVER_DRY_RUN, PROJVER_OUTPUT, PROJVER_FORMAT
// and PROJVER_LOG_LEVEL. LOG_LEVEL is honored when no level is given.
//
// # Exit Codes
//
//	0  all projects processed
//	1  invalid input, unreadable solution or project, write failure
//	2  interrupted by SIGINT or SIGTERM
package cli
