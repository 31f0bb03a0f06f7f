package cli

import "github.com/ppiankov/urlsum/internal/pipeline"

// ExitCode maps a command error onto the process exit status
func ExitCode(err error) int {
	return pipeline.Classify(err).ExitCode
}
