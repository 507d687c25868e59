// Package solution enumerates the projects of a Visual Studio solution.
//
// Both the classic text format (.sln) and the XML format (.slnx) are read.
// Solution folders and web site entries are skipped, and project paths are
// returned absolute, with Windows separators converted for the host:
//
//	path, err := solution.Find(workspace)
//	if err != nil {
//	    return err
//	}
//	sln, err := solution.Load(path)
//	if err != nil {
//	    return err
//	}
//	for _, p := range sln.ProjectPaths() {
//	    ...
//	}
package solution
