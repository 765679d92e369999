package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursesync/internal/content"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create content remotely and locally",
}

var newPageCmd = &cobra.Command{
	Use:   "page <title>",
	Short: "Create an empty page and its local file",
	Long: "Creates the page on the platform first, then writes the local file\n" +
		"named by the identifier the platform assigned.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		title := strings.Join(args, " ")
		entry, err := s.engine.CreateNew(cmd.Context(), content.KindPage, s.course.Dir(content.KindPage), title)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created page %q as %s\n", entry.Title, entry.Path)
		return nil
	},
}

func init() {
	newCmd.AddCommand(newPageCmd)
}
