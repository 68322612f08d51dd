package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	var short, asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, build information, and Go runtime version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, a.build.Version)
				return nil
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"version":   a.build.Version,
					"commit":    a.build.Commit,
					"built":     a.build.BuildTime,
					"goVersion": runtime.Version(),
					"platform":  runtime.GOOS + "/" + runtime.GOARCH,
				})
			}

			fmt.Fprintf(w, "mailctl version %s\n", a.build.Version)
			fmt.Fprintf(w, "  commit:     %s\n", a.build.Commit)
			fmt.Fprintf(w, "  built:      %s\n", a.build.BuildTime)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print version string only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
