// Package wikigame ties the puzzle store, the Wikipedia fetcher and the page
// generator together into the two operations of the game: adding a puzzle
// and regenerating the site.
package wikigame

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zbanks/wikigame/puzzle"
	"github.com/zbanks/wikigame/site"
	"github.com/zbanks/wikigame/store"
	"github.com/zbanks/wikigame/wikipedia"
)

// ArticleFetcher retrieves the title and table of contents of an article.
// *wikipedia.Fetcher is the production implementation.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*wikipedia.Article, error)
}

// Game runs puzzle operations against one store.
type Game struct {
	store   *store.PuzzleStore
	fetcher ArticleFetcher
	logger  *slog.Logger
}

// AddOptions describes a puzzle to add.
type AddOptions struct {
	URL         string
	Contributor string
	Censor      string
}

// AddResult is the outcome of a successful Add.
type AddResult struct {
	Puzzle puzzle.Puzzle
	Count  int // puzzles in the store after the add
}

// GenerateOptions controls a site build.
type GenerateOptions struct {
	OutputPath string
	Page       site.Options
	// Refresh re-fetches every table of contents and saves the store before
	// rendering.
	Refresh bool
}

// NewGame creates a game. fetcher may be nil if Add and refreshing are never
// used.
func NewGame(st *store.PuzzleStore, fetcher ArticleFetcher, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Game{
		store:   st,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Add fetches the article at opts.URL and appends it to the store as a new
// puzzle. On any error the store is left unchanged.
func (g *Game) Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if opts.Censor != "" {
		if _, err := puzzle.CompileCensor(opts.Censor); err != nil {
			return nil, err
		}
	}
	if g.fetcher == nil {
		return nil, fmt.Errorf("no article fetcher configured")
	}

	// Skip the network round trip for URLs we already have
	if err := g.checkDuplicate(opts.URL); err != nil {
		return nil, err
	}

	g.logger.Info("fetching article", "url", opts.URL)
	article, err := g.fetcher.Fetch(ctx, opts.URL)
	if err != nil {
		return nil, err
	}

	p := puzzle.Puzzle{
		Title:       article.Title,
		URL:         article.URL,
		TOC:         article.TOC,
		Contributor: opts.Contributor,
		Censor:      opts.Censor,
	}
	if p.URL == "" {
		p.URL = opts.URL
	}
	if p.URL != opts.URL {
		g.logger.Debug("using canonical url", "requested", opts.URL, "canonical", p.URL)
	}

	count, err := g.store.Append(p)
	if err != nil {
		return nil, err
	}

	g.logger.Info("added puzzle", "number", count, "entries", len(p.TOC), "store", g.store.Path())
	return &AddResult{Puzzle: p, Count: count}, nil
}

func (g *Game) checkDuplicate(url string) error {
	existing, err := g.store.Load()
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.URL == url {
			return &puzzle.DuplicateError{URL: url}
		}
	}
	return nil
}

// Generate renders every puzzle in the store to opts.OutputPath and returns
// the number of puzzles written. The previous page is only replaced once the
// new one has been rendered completely.
func (g *Game) Generate(ctx context.Context, opts GenerateOptions) (int, error) {
	puzzles, err := g.store.Load()
	if err != nil {
		return 0, err
	}

	if opts.Refresh {
		if err := g.refresh(ctx, puzzles); err != nil {
			return 0, err
		}
	}

	seenTitles := make(map[string]int, len(puzzles))
	for i, p := range puzzles {
		number := i + 1
		g.logger.Info("generating puzzle", "number", number)
		g.logger.Debug("puzzle details", "number", number, "title", p.Title, "entries", len(p.TOC))

		if first, ok := seenTitles[p.Title]; ok {
			g.logger.Warn("duplicate puzzle", "number", number, "same_as", first)
			continue
		}
		seenTitles[p.Title] = number
	}

	doc, err := site.Render(puzzles, opts.Page)
	if err != nil {
		return 0, err
	}

	if err := site.WriteFile(opts.OutputPath, doc); err != nil {
		return 0, err
	}

	g.logger.Info("wrote page", "path", opts.OutputPath, "puzzles", len(puzzles))
	return len(puzzles), nil
}

// refresh replaces every puzzle's table of contents with a fresh copy and
// saves the store. Nothing is saved unless every fetch succeeds.
func (g *Game) refresh(ctx context.Context, puzzles []puzzle.Puzzle) error {
	if g.fetcher == nil {
		return fmt.Errorf("no article fetcher configured")
	}

	for i := range puzzles {
		g.logger.Info("refreshing puzzle", "number", i+1)
		article, err := g.fetcher.Fetch(ctx, puzzles[i].URL)
		if err != nil {
			return fmt.Errorf("refresh puzzle #%d: %w", i+1, err)
		}
		puzzles[i].TOC = article.TOC
	}

	return g.store.Save(puzzles)
}
