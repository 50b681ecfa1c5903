package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Render prints v as JSON when --json is set and through text otherwise.
func Render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// SetJSONOutput toggles JSON rendering.
func SetJSONOutput(enabled bool) {
	jsonOutput = enabled
}

// Rule prints a horizontal separator of width n.
func Rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("-", n))
}

// OrDash returns s, or "-" when s is empty.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
