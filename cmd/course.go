package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/canvas"
	"github.com/abhisek/coursesync/internal/config"
	"github.com/abhisek/coursesync/internal/reconcile"
	"github.com/abhisek/coursesync/internal/ui/report"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Sync course settings with the settings block of " + config.FileName,
}

var coursePullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy the remote course settings and assignment groups into " + config.FileName,
	Long: "Settings you changed locally that differ from the platform are reported\n" +
		"as conflicts and nothing is written, unless --force is given.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runCourse(cmd, func(ctx context.Context, e *reconcile.Engine, c *config.Course) (*reconcile.CourseReport, error) {
			return e.PullCourse(ctx, c, reconcile.CourseOptions{Overwrite: force})
		})
	},
}

var coursePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send the settings of " + config.FileName + " that differ from the remote course",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runCourse(cmd, func(ctx context.Context, e *reconcile.Engine, c *config.Course) (*reconcile.CourseReport, error) {
			return e.PushCourse(ctx, c, reconcile.CourseOptions{DryRun: dryRun})
		})
	},
}

var courseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the settings of " + config.FileName + " with the remote course",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCourse(cmd, func(ctx context.Context, e *reconcile.Engine, c *config.Course) (*reconcile.CourseReport, error) {
			return e.CourseStatus(ctx, c)
		})
	},
}

// runCourse loads the course, runs one settings operation against its
// remote course and renders the report. Course settings need no body
// converter, so this skips the full session.
func runCourse(cmd *cobra.Command, run func(ctx context.Context, e *reconcile.Engine, c *config.Course) (*reconcile.CourseReport, error)) error {
	course, err := loadCourse(cmd)
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(course)
	if err != nil {
		return err
	}
	client := canvas.New(creds.Domain, creds.Token, course.Canvas.CourseID)

	rep, err := run(cmd.Context(), reconcile.New(client, nil), course)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	v := report.FromCourse(rep)
	if output == report.FormatText {
		report.WriteCourse(cmd.OutOrStdout(), v)
	} else if err := report.Encode(cmd.OutOrStdout(), output, v); err != nil {
		return err
	}
	return rep.Err()
}

func init() {
	coursePullCmd.Flags().BoolP("force", "f", false, "Overwrite local settings that differ from the platform")
	coursePushCmd.Flags().Bool("dry-run", false, "Report the changes without sending them")
	courseCmd.AddCommand(coursePullCmd, coursePushCmd, courseStatusCmd)
}
