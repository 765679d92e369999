package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/reconcile"
)

var pushCmd = &cobra.Command{
	Use:   "push [kind...]",
	Short: "Upload local files to the remote course",
	Long: "Files with a remote_id update their remote item; the rest are created\n" +
		"and renamed after the identifier the platform assigns. Kinds default to\n" +
		"all of them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := parseKinds(args)
		if err != nil {
			return err
		}
		opts := reconcile.DefaultPushOptions()
		createOnly, _ := cmd.Flags().GetBool("create-only")
		updateOnly, _ := cmd.Flags().GetBool("update-only")
		opts.UpdateExisting = !createOnly
		opts.CreateMissing = !updateOnly
		opts.AllowRename, _ = cmd.Flags().GetBool("force-rename")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.runBatches(cmd, ks, reconcile.OpPush,
			func(ctx context.Context, kind content.Kind, dir string) (*reconcile.Report, error) {
				return s.engine.Push(ctx, kind, dir, opts)
			})
	},
}

func init() {
	pushCmd.Flags().Bool("create-only", false, "Only create items that have no remote_id")
	pushCmd.Flags().Bool("update-only", false, "Only update items that already have a remote_id")
	pushCmd.Flags().Bool("force-rename", false, "Create pages even when the platform will assign a different identifier")
	pushCmd.MarkFlagsMutuallyExclusive("create-only", "update-only")
}
