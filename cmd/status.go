package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/ctxlog"
	"github.com/abhisek/coursesync/internal/reconcile"
	"github.com/abhisek/coursesync/internal/ui/report"
)

var statusCmd = &cobra.Command{
	Use:   "status [kind...]",
	Short: "Compare local files with the remote course",
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := parseKinds(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		output, _ := cmd.Flags().GetString("output")
		out := cmd.OutOrStdout()
		var all []report.Status
		var firstErr error
		for _, k := range ks {
			st, err := s.engine.Status(ctx, k, s.course.Dir(k), reconcile.StatusOptions{AllowMissing: true})
			if err != nil {
				ctxlog.FromContext(ctx).Warn("status failed", "kind", k.String(),
					"category", content.Category(err), "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			v := report.FromStatus(st)
			all = append(all, v)
			if output == report.FormatText {
				report.WriteStatus(out, v)
			}
		}
		if output != report.FormatText {
			if err := report.Encode(out, output, all); err != nil {
				return err
			}
		}
		return firstErr
	},
}
