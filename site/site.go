// Package site renders the static guessing-game page.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/zbanks/wikigame/puzzle"
)

// maxDepth is the deepest indentation class the stylesheet defines.
const maxDepth = 5

// Options controls page-level text.
type Options struct {
	Title   string
	RepoURL string
}

type pageView struct {
	Title   string
	RepoURL string
	Puzzles []puzzleView
}

type puzzleView struct {
	Number       int
	ID           string
	Byline       string
	EncodedTitle string
	EncodedURL   string
	Entries      []entryView
}

type entryView struct {
	Number string
	Depth  int
	Text   string
}

var page = template.Must(template.New("page").Parse(pageTemplate))

// Render builds the page for puzzles, in order. It does no I/O and uses no
// clock or randomness, so the same puzzles always give the same bytes.
func Render(puzzles []puzzle.Puzzle, opts Options) ([]byte, error) {
	view := pageView{
		Title:   opts.Title,
		RepoURL: opts.RepoURL,
		Puzzles: make([]puzzleView, 0, len(puzzles)),
	}

	for i, p := range puzzles {
		pv := puzzleView{
			Number:       i + 1,
			ID:           p.ID().String(),
			EncodedTitle: puzzle.Encode(p.Title),
			EncodedURL:   puzzle.Encode(p.URL),
		}
		if p.Contributor != "" {
			pv.Byline = ", by " + p.Contributor
		}

		for _, e := range p.TOC {
			text, err := puzzle.ApplyCensor(e.Text, p.Censor)
			if err != nil {
				return nil, fmt.Errorf("puzzle #%d: %w", i+1, err)
			}
			pv.Entries = append(pv.Entries, entryView{
				Number: e.Number,
				Depth:  min(max(e.Level, 0), maxDepth),
				Text:   text,
			})
		}

		view.Puzzles = append(view.Puzzles, pv)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile replaces the file at path with doc, creating parent directories
// as needed. The replacement is atomic: on failure the previous file is left
// as it was.
func WriteFile(path string, doc []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &puzzle.IOError{Op: "create directory", Path: dir, Err: err}
		}
	}

	if err := renameio.WriteFile(path, doc, 0o644); err != nil {
		return &puzzle.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
