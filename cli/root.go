// Package cli is the portfoliosync command line: the sync pipeline, its
// individual stages and the HTTP server.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
)

// errIncomplete is returned when a pipeline run had failed or skipped stages.
var errIncomplete = errors.New("sync completed with errors")

//nolint:gochecknoglobals // Cobra boilerplate
var logLevel string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfoliosync",
	Short: "Keep portfolio data in sync with GitHub and LeetCode",
	Long: `portfoliosync ingests GitHub and LeetCode activity into a document store,
derives skills, an about section and AI-written achievements from it, and serves
the result to the portfolio front end.

Configuration comes from the environment or a .env file in the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status reflecting the outcome.
func Execute() {
	err := rootCmd.Execute()
	code := exitCode(err)
	if err != nil {
		logger.Sync()
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case apperrors.Is(err, apperrors.KindConfig):
		return exitConfigError
	}
	return exitFailure
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn or error")
}
