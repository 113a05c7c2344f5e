// Package config carries process-wide constants and mode flags, the same
// small ambient role the original internal/config/constants.go plays: a
// version string, recognized source extensions, and test/server mode
// switches consulted by a handful of unrelated packages instead of being
// threaded through every call.
package config

// Version is the current fsc version, set at build time via
// -ldflags "-X github.com/featherscala/fsc/internal/config.Version=...".
var Version = "0.1.0"

const SourceFileExt = ".fsc"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".fsc", ".featherscala"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates the program is running under the e2e scenario
// harness, so library code can take deterministic shortcuts (resetting the
// unique-name counter before each scenario) without threading a flag
// through every call.
var IsTestMode = false

// IsDaemonMode indicates the program is running as the gRPC compile
// daemon (cmd/fscd) rather than the one-shot CLI.
var IsDaemonMode = false

// Built-in primitive bindings (spec.md §6).
const (
	ReadIntFuncName      = "readInt"
	ReadFloatFuncName    = "readFloat"
	PrintlnIntFuncName   = "printlnInt"
	PrintlnFloatFuncName = "printlnFloat"
	PrintfFuncName       = "printf"
	MallocFuncName       = "malloc"
	MainFuncName         = "main"
)
