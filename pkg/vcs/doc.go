// Package vcs derives a default version from git release tags.
//
// When no version is given, the newest tag without a pre-release separator
// is used as the base version. For release builds (revision 0) its build
// component is incremented. If git is missing, the directory is not a
// repository, or no tag parses, the fallback version 1.0.0 is returned.
// Tag reading never fails a run.
package vcs
