package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/store"
	"github.com/abhisek/coursesync/internal/ui/report"
)

var rootCmd = &cobra.Command{
	Use:   "coursesync",
	Short: "Sync course content between local files and Canvas",
	Long: "coursesync keeps a directory of markdown files and a Canvas course in step.\n" +
		"Pages, quizzes, discussions, assignments, rubrics and modules are pulled\n" +
		"into header/body files and pushed back after editing.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		switch format {
		case "text", "json":
		default:
			return fmt.Errorf("unsupported log format %q (want text or json)", format)
		}
		output, _ := cmd.Flags().GetString("output")
		switch output {
		case report.FormatText, report.FormatJSON, report.FormatYAML:
		default:
			return fmt.Errorf("unsupported output format %q (want text, json or yaml)", output)
		}
		logger := ctxlog.New(level, format, os.Stderr)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("dir", "C", ".", "Course directory (or any directory below it)")
	pf.String("db", "", "Path to the sync journal (overrides COURSESYNC_DB env var)")
	pf.String("log-level", "warn", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.StringP("output", "o", report.FormatText, "Report format: text, json or yaml")
	pf.Bool("no-convert", false, "Store bodies as HTML instead of converting with pandoc")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then COURSESYNC_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
