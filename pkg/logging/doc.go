// Package logging configures the process-wide structured logger.
//
// Records are written to stderr by the standard library slog JSON handler,
// with module and version attributes on every record. Debug level adds the
// source location.
//
// The level comes from an explicit value, typically a command-line flag, or
// from the LOG_LEVEL environment variable (debug, info, warn, error; case
// insensitive). Unknown values mean info:
//
//	logging.SetDefaultStructuredLoggerWithLevel("projver", version, cmd.String("log-level"))
//	slog.Info("updated project", "file", "App.csproj", "projectVersion", "1.2.3")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"updated project","module":"projver","version":"v0.3.0","file":"App.csproj","projectVersion":"1.2.3"}
package logging
