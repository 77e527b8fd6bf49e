package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zbanks/wikigame"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		contributor string
		censor      string
	)

	cmd := &cobra.Command{
		Use:   "add [flags] <url>",
		Short: "Fetch an article and add it as a puzzle",
		Long: `Add fetches the Wikipedia article at <url>, extracts its table of contents
and appends it to the puzzle file. The puzzle file is left untouched if
the fetch fails or the article is already a puzzle.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("add requires exactly one article URL, got %d arguments", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("contributor") {
				contributor = s.Contributor
			}

			result, err := a.newGame(s).Add(cmd.Context(), wikigame.AddOptions{
				URL:         args[0],
				Contributor: contributor,
				Censor:      censor,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added puzzle #%d: %s\n", result.Count, result.Puzzle.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contributor, "contributor", "C", "", "credit the puzzle to NAME")
	cmd.Flags().StringVarP(&censor, "censor", "X", "", "hide matches of this regular expression in the contents (case-insensitive)")
	return cmd
}
