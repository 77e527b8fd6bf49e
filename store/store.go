package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/zbanks/wikigame/puzzle"
)

// FormatVersion is written as "v" on every line.
const FormatVersion = 1

// PuzzleStore is an ordered collection of puzzles kept in a plain text file,
// one JSON object per line. Blank lines and lines starting with '#' are
// comments. Line order is puzzle order.
type PuzzleStore struct {
	path string
}

// record is the on-disk shape of a puzzle. Keys starting with '#' hold
// obfuscated values. Field order here is the field order on disk.
type record struct {
	Version     int            `json:"v"`
	Title       string         `json:"#title"`
	URL         string         `json:"#url"`
	Contributor string         `json:"contributor,omitempty"`
	Censor      string         `json:"#censor,omitempty"`
	TOC         []puzzle.Entry `json:"toc"`
}

// NewPuzzleStore returns a store backed by the file at path. The file does
// not need to exist yet.
func NewPuzzleStore(path string) *PuzzleStore {
	return &PuzzleStore{path: path}
}

// Path returns the backing file path.
func (s *PuzzleStore) Path() string {
	return s.path
}

// Load parses every puzzle in the store. A missing file is an empty store.
// The first malformed line fails the whole load with a *puzzle.ParseError.
func (s *PuzzleStore) Load() ([]puzzle.Puzzle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []puzzle.Puzzle{}, nil
		}
		return nil, &puzzle.IOError{Op: "read", Path: s.path, Err: err}
	}

	puzzles := []puzzle.Puzzle{}
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if isComment(line) {
			continue
		}

		p, err := decodeLine(line)
		if err != nil {
			return nil, &puzzle.ParseError{Source: s.path, Line: i + 1, Err: err}
		}
		puzzles = append(puzzles, p)
	}

	return puzzles, nil
}

// Append adds p at the end of the store without rewriting existing lines and
// returns the number of puzzles now stored. A URL that is already present
// fails with a *puzzle.DuplicateError and leaves the file untouched.
func (s *PuzzleStore) Append(p puzzle.Puzzle) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("invalid puzzle: %w", err)
	}

	existing, err := s.Load()
	if err != nil {
		return 0, err
	}
	for _, e := range existing {
		if e.URL == p.URL {
			return 0, &puzzle.DuplicateError{URL: p.URL}
		}
	}

	line, err := encodeLine(p)
	if err != nil {
		return 0, err
	}

	// Keep the previous last line intact if the file lacks a final newline
	needsNewline, err := s.missingTrailingNewline()
	if err != nil {
		return 0, err
	}
	if needsNewline {
		line = append([]byte("\n"), line...)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &puzzle.IOError{Op: "create directory", Path: dir, Err: err}
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return 0, &puzzle.IOError{Op: "open", Path: s.path, Err: err}
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return 0, &puzzle.IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, &puzzle.IOError{Op: "sync", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return 0, &puzzle.IOError{Op: "close", Path: s.path, Err: err}
	}

	return len(existing) + 1, nil
}

// Save replaces the store contents with puzzles, in order. The leading
// comment block of the existing file is kept. The file is replaced
// atomically, so a failed save leaves the previous contents in place.
func (s *PuzzleStore) Save(puzzles []puzzle.Puzzle) error {
	var buf bytes.Buffer

	header, err := s.header()
	if err != nil {
		return err
	}
	buf.Write(header)

	seen := make(map[string]bool, len(puzzles))
	for _, p := range puzzles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid puzzle %q: %w", p.URL, err)
		}
		if seen[p.URL] {
			return &puzzle.DuplicateError{URL: p.URL}
		}
		seen[p.URL] = true

		line, err := encodeLine(p)
		if err != nil {
			return err
		}
		buf.Write(line)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return &puzzle.IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// header returns the comment and blank lines at the top of the existing
// file, each terminated by a newline.
func (s *PuzzleStore) header() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &puzzle.IOError{Op: "read", Path: s.path, Err: err}
	}

	var header []byte
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		if len(line) == 0 || !isComment(bytes.TrimSpace(line)) {
			break
		}
		header = append(header, bytes.TrimRight(line, "\r\n")...)
		header = append(header, '\n')
	}
	return header, nil
}

func (s *PuzzleStore) missingTrailingNewline() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &puzzle.IOError{Op: "read", Path: s.path, Err: err}
	}
	return len(data) > 0 && data[len(data)-1] != '\n', nil
}

func isComment(line []byte) bool {
	return len(line) == 0 || line[0] == '#'
}

// encodeLine renders one puzzle as a newline-terminated JSON object.
func encodeLine(p puzzle.Puzzle) ([]byte, error) {
	rec := record{
		Version:     FormatVersion,
		Title:       puzzle.Encode(p.Title),
		URL:         puzzle.Encode(p.URL),
		Contributor: p.Contributor,
		TOC:         p.TOC,
	}
	if p.Censor != "" {
		rec.Censor = puzzle.Encode(p.Censor)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to marshal puzzle: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeLine parses one non-comment line.
func decodeLine(line []byte) (puzzle.Puzzle, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("malformed record: %w", err)
	}
	if rec.Version != FormatVersion {
		return puzzle.Puzzle{}, fmt.Errorf("unsupported record version %d", rec.Version)
	}

	title, err := puzzle.Decode(rec.Title)
	if err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("#title: %w", err)
	}
	url, err := puzzle.Decode(rec.URL)
	if err != nil {
		return puzzle.Puzzle{}, fmt.Errorf("#url: %w", err)
	}
	var censor string
	if rec.Censor != "" {
		if censor, err = puzzle.Decode(rec.Censor); err != nil {
			return puzzle.Puzzle{}, fmt.Errorf("#censor: %w", err)
		}
	}

	p := puzzle.Puzzle{
		Title:       title,
		URL:         url,
		TOC:         rec.TOC,
		Contributor: rec.Contributor,
		Censor:      censor,
	}
	if err := p.Validate(); err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}
