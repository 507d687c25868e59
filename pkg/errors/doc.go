// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Version and document failures carry a code so the CLI can report them
// consistently and tests can match on the classification rather than on
// message text:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeDocumentLoad,
//	    "failed to parse project file",
//	    cause,
//	    map[string]any{
//	        "path": path,
//	    },
//	)
//
//	if errors.HasCode(err, errors.ErrCodeDocumentLoad) {
//	    // ...
//	}
package errors
