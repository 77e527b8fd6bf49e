package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zbanks/wikigame"
	"github.com/zbanks/wikigame/config"
	"github.com/zbanks/wikigame/logging"
	"github.com/zbanks/wikigame/store"
	"github.com/zbanks/wikigame/wikipedia"
)

// usageError marks errors caused by how the command was invoked, which are
// followed by the usage text.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app holds what a single invocation needs from its environment.
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// fetcher overrides the Wikipedia fetcher, for tests.
	fetcher wikigame.ArticleFetcher

	configPath  string
	puzzlesPath string
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	}, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(a.stderr)
		fmt.Fprint(a.stderr, cmd.UsageString())
	}
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wikigame",
		Short: "Guess the Wikipedia article from its table of contents",
		Long: `wikigame maintains a list of puzzles, each the table of contents of a
Wikipedia article, and renders them into a static guessing-game page.

Use "add" to fetch an article and append it to the puzzle list, then
"generate" to rebuild the page.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return &usageError{errors.New("a command is required")}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ./"+config.LocalConfigFile+" or ~/.wikigame/config.yaml)")
	flags.StringVarP(&a.puzzlesPath, "input", "i", "", "puzzle file (default: "+config.DefaultPuzzlesPath+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging, which may reveal answers")

	root.AddCommand(newAddCmd(a), newGenerateCmd(a))
	return root
}

// settings resolves configuration for cmd: flags, then environment, then
// the config file, then defaults.
func (a *app) settings(cmd *cobra.Command) (config.Settings, error) {
	file, _, err := config.Find(a.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	s := config.Resolve(file, a.getenv)
	if cmd.Flags().Changed("input") {
		s.PuzzlesPath = a.puzzlesPath
	}
	return s, nil
}

// newGame builds a game over the configured store.
func (a *app) newGame(s config.Settings) *wikigame.Game {
	fetcher := a.fetcher
	if fetcher == nil {
		fetcher = wikipedia.NewFetcher(nil)
	}

	logger := logging.New(a.stderr, a.verbose)
	return wikigame.NewGame(store.NewPuzzleStore(s.PuzzlesPath), fetcher, logger)
}
