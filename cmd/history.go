package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/store"
	"github.com/abhisek/coursesync/internal/ui/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pull and push runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kindArg, _ := cmd.Flags().GetString("kind")
		op, _ := cmd.Flags().GetString("op")

		opts := store.QueryOpts{Limit: limit, Op: op}
		if kindArg != "" {
			k, err := content.ParseKind(kindArg)
			if err != nil {
				return err
			}
			opts.Kind = k.String()
		}
		if all, _ := cmd.Flags().GetBool("all-courses"); !all {
			if c, err := loadCourse(cmd); err == nil {
				opts.CourseID = c.Canvas.CourseID
			}
		}

		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.Runs().Recent(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		output, _ := cmd.Flags().GetString("output")
		if output != report.FormatText {
			return report.Encode(cmd.OutOrStdout(), output, runs)
		}
		report.WriteHistory(cmd.OutOrStdout(), runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the item outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := s.Runs().Items(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("query items: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: no items recorded for run %s", content.ErrNotFound, args[0])
		}
		output, _ := cmd.Flags().GetString("output")
		if output != report.FormatText {
			return report.Encode(cmd.OutOrStdout(), output, items)
		}
		report.WriteItems(cmd.OutOrStdout(), items)
		return nil
	},
}

func openJournal(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().String("kind", "", "Only runs of this content kind")
	historyCmd.Flags().String("op", "", "Only pull or push runs")
	historyCmd.Flags().Bool("all-courses", false, "Include runs of every course")
	historyCmd.AddCommand(historyShowCmd)
}
