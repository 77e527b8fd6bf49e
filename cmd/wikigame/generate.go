package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zbanks/wikigame"
	"github.com/zbanks/wikigame/site"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the puzzle page",
		Long: `Generate renders every puzzle in the puzzle file into a single static HTML
page. With --refresh, each table of contents is fetched again and the
puzzle file is updated first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("generate takes no arguments, got %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				s.OutputPath = output
			}

			n, err := a.newGame(s).Generate(cmd.Context(), wikigame.GenerateOptions{
				OutputPath: s.OutputPath,
				Page:       site.Options{Title: s.PageTitle, RepoURL: s.RepoURL},
				Refresh:    refresh,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d puzzles to %s\n", n, s.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "page to write (default: docs/index.html)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch every table of contents before rendering")
	return cmd
}
