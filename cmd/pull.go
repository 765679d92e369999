package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/reconcile"
)

var pullCmd = &cobra.Command{
	Use:   "pull [kind...]",
	Short: "Download remote content into local files",
	Long: "Writes one file per remote item, named by its identifier. Existing files\n" +
		"are left alone unless --force is given. Kinds default to all of them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := parseKinds(args)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := reconcile.PullOptions{Overwrite: force}
		return s.runBatches(cmd, ks, reconcile.OpPull,
			func(ctx context.Context, kind content.Kind, dir string) (*reconcile.Report, error) {
				return s.engine.Pull(ctx, kind, dir, opts)
			})
	},
}

func init() {
	pullCmd.Flags().BoolP("force", "f", false, "Overwrite existing local files")
}
