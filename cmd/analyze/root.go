// Command analyze is the CLI surface for the CFG/SDFG engine (spec.md §6):
// the root `analyze` command producing one or more graph views for a single
// translation unit, and a `serve` subcommand exposing the same pipeline as
// MCP tools. Grounded on hargabyte-cortex's cmd/<tool>/main.go + cobra
// root-command shape.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build CFG/SDFG graphs for a C or C++ translation unit",
	Long: `analyze parses a single C or C++ source file and builds one or more of
its AST, CFG, SDFG, or combined graph views, serialized as JSON or DOT.`,
}

func main() {
	_ = godotenv.Load() // per-checkout .env is optional; ignore "not found"
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to spec.md §6's exit codes: the code a
// cliError carries (1 for a parse failure, 2 for invalid flags), and 1 for
// any other error. cobra only reaches this path on a non-nil error, so 0 is
// never returned here.
func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return 1
}

// cliError carries spec.md §6's exit code alongside the error message.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func flagError(err error) error { return &cliError{code: 2, err: err} }
func parseError(err error) error { return &cliError{code: 1, err: err} }
