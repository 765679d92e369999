package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/links"
	"github.com/abhisek/coursesync/internal/ui/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir...]",
	Short: "Check that links between local pages resolve",
	Long: "Every markdown link to a page must name a page file in the same directory,\n" +
		"by its remote_id or its file name. Directories default to the course's\n" +
		"pages directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs := args
		if len(dirs) == 0 {
			course, err := loadCourse(cmd)
			if err != nil {
				return err
			}
			dirs = []string{course.Dir(content.KindPage)}
		}

		output, _ := cmd.Flags().GetString("output")
		out := cmd.OutOrStdout()
		var all []report.Validation
		var errs []error
		for _, dir := range dirs {
			v, err := links.Validate(dir)
			if err != nil {
				errs = append(errs, fmt.Errorf("validate %s: %w", dir, err))
				continue
			}
			r := report.FromValidation(dir, v)
			all = append(all, r)
			if output == report.FormatText {
				report.WriteValidation(out, r)
			}
			if err := v.Err(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			}
		}
		if output != report.FormatText {
			if err := report.Encode(out, output, all); err != nil {
				return err
			}
		}
		return errors.Join(errs...)
	},
}
