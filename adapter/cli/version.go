package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/felixgeelhaar/perfboard/adapter/cli.Version=..." at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild returns the linked-in version, filling the commit and date
// from the module's VCS stamp for plain go install builds.
func CurrentBuild() BuildInfo {
	info := BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := CurrentBuild()
		return Render(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "perfboard %s\n", info.Version)
			fmt.Fprintf(w, "  commit: %s\n", info.Commit)
			fmt.Fprintf(w, "  built:  %s\n", info.BuildDate)
			fmt.Fprintf(w, "  go:     %s\n", info.GoVersion)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
