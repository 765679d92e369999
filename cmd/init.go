package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init <course-id>",
	Short: "Set up a course directory",
	Long: "Writes course.yaml, creates one directory per content kind and makes\n" +
		"sure .env is listed in .gitignore.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		domain, _ := cmd.Flags().GetString("domain")
		if domain != "" {
			d, err := config.NormalizeDomain(domain)
			if err != nil {
				return err
			}
			domain = d
		}

		c, err := config.Init(dir, args[0], domain)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized course %s in %s\n", c.Canvas.CourseID, c.Root)
		fmt.Fprintf(cmd.OutOrStdout(), "Put %s (and %s) in %s/.env, then run 'coursesync pull'.\n",
			config.EnvToken, config.EnvDomain, c.Root)
		return nil
	},
}

func init() {
	initCmd.Flags().String("domain", "", "Canvas host, e.g. canvas.example.edu")
}
