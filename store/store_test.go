package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zbanks/wikigame/puzzle"
)

// Test helper: create a store in a temporary directory
func createTestStore(t *testing.T) *PuzzleStore {
	return NewPuzzleStore(filepath.Join(t.TempDir(), "puzzles.txt"))
}

// Test helper: create a sample puzzle for the given article name
func samplePuzzle(name string) puzzle.Puzzle {
	return puzzle.Puzzle{
		Title: name,
		URL:   "https://en.wikipedia.org/wiki/" + name,
		TOC: []puzzle.Entry{
			{Number: "1", Level: 0, Text: "History"},
			{Number: "1.1", Level: 1, Text: "Etymology"},
			{Number: "2", Level: 0, Text: "See also"},
		},
	}
}

// Test helper: read the raw backing file
func readFile(t *testing.T, s *PuzzleStore) string {
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	return string(data)
}

// TestLoad_MissingFile verifies a missing file is an empty store
func TestLoad_MissingFile(t *testing.T) {
	s := createTestStore(t)

	puzzles, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, puzzles)
}

// TestAppend_RoundTrip verifies appended puzzles load back unchanged and in
// order
func TestAppend_RoundTrip(t *testing.T) {
	s := createTestStore(t)

	first := samplePuzzle("Penguin")
	second := samplePuzzle("Lighthouse")
	second.Contributor = "zbanks"
	second.Censor = "light"

	count, err := s.Append(first)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.Append(second)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	puzzles, err := s.Load()
	require.NoError(t, err)
	require.Len(t, puzzles, 2)
	assert.Equal(t, first, puzzles[0], "prior elements should be unchanged")
	assert.Equal(t, second, puzzles[1], "last element should be the appended puzzle")
}

// TestAppend_PreservesPriorContent verifies append never rewrites existing
// bytes
func TestAppend_PreservesPriorContent(t *testing.T) {
	s := createTestStore(t)
	prior := "# puzzles for the wiki game\n\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(prior), 0o644))

	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)

	content := readFile(t, s)
	assert.True(t, strings.HasPrefix(content, prior))

	added := strings.TrimPrefix(content, prior)
	assert.Equal(t, 1, strings.Count(added, "\n"), "should add exactly one line")
	assert.True(t, strings.HasSuffix(added, "\n"))
}

// TestAppend_MissingTrailingNewline verifies the last line is not merged
func TestAppend_MissingTrailingNewline(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)

	trimmed := strings.TrimSuffix(readFile(t, s), "\n")
	require.NoError(t, os.WriteFile(s.Path(), []byte(trimmed), 0o644))

	_, err = s.Append(samplePuzzle("Lighthouse"))
	require.NoError(t, err)

	puzzles, err := s.Load()
	require.NoError(t, err)
	require.Len(t, puzzles, 2)
	assert.Equal(t, "Lighthouse", puzzles[1].Title)
}

// TestAppend_Duplicate verifies duplicate URLs are rejected without touching
// the file
func TestAppend_Duplicate(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)
	before := readFile(t, s)

	dup := samplePuzzle("Penguin")
	dup.Title = "Another title"
	_, err = s.Append(dup)

	var dupErr *puzzle.DuplicateError
	require.True(t, errors.As(err, &dupErr), "should be a DuplicateError, got %v", err)
	assert.Equal(t, dup.URL, dupErr.URL)
	assert.ErrorIs(t, err, puzzle.ErrDuplicate)
	assert.Equal(t, before, readFile(t, s), "file should be byte-identical")
}

// TestAppend_InvalidPuzzle verifies invariants are checked before writing
func TestAppend_InvalidPuzzle(t *testing.T) {
	s := createTestStore(t)

	p := samplePuzzle("Penguin")
	p.TOC = nil
	_, err := s.Append(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table of contents is empty")

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "store file should not be created")
}

// TestAppend_RefusesCorruptStore verifies a malformed store is not extended
func TestAppend_RefusesCorruptStore(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage\n"), 0o644))

	_, err := s.Append(samplePuzzle("Penguin"))

	var parseErr *puzzle.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "garbage\n", readFile(t, s))
}

// TestLoad_Malformed verifies malformed lines fail with a located ParseError
func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"not json", "this is not json", "malformed record"},
		{"wrong version", `{"v":9,"#title":"AFRU","#url":"AFRU","toc":[]}`, "unsupported record version"},
		{"bad title encoding", `{"v":1,"#title":"%%%","#url":"AFRU","toc":[]}`, "#title"},
		{"missing toc", `{"v":1,"#title":"` + puzzle.Encode("T") + `","#url":"` + puzzle.Encode("https://x.org/T") + `"}`, "table of contents is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			_, err := s.Append(samplePuzzle("Penguin"))
			require.NoError(t, err)

			f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
			require.NoError(t, err)
			_, err = f.WriteString("# a comment\n" + tt.line + "\n")
			require.NoError(t, err)
			require.NoError(t, f.Close())

			_, err = s.Load()

			var parseErr *puzzle.ParseError
			require.True(t, errors.As(err, &parseErr), "should be a ParseError, got %v", err)
			assert.Equal(t, 3, parseErr.Line)
			assert.Equal(t, s.Path(), parseErr.Source)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoad_SkipsComments verifies comments and blank lines are ignored
func TestLoad_SkipsComments(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)

	content := "# header\n\n   \n" + readFile(t, s) + "\n# trailing\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	puzzles, err := s.Load()
	require.NoError(t, err)
	require.Len(t, puzzles, 1)
	assert.Equal(t, "Penguin", puzzles[0].Title)
}

// TestLineFormat verifies spoiler fields are obfuscated on disk
func TestLineFormat(t *testing.T) {
	s := createTestStore(t)
	p := samplePuzzle("Penguin")
	p.Contributor = "zbanks"
	p.Censor = "penguin"
	_, err := s.Append(p)
	require.NoError(t, err)

	content := readFile(t, s)
	assert.NotContains(t, content, "Penguin")
	assert.NotContains(t, content, "penguin")
	assert.Contains(t, content, `"contributor":"zbanks"`)
	assert.Contains(t, content, `"text":"Etymology"`)
	assert.True(t, strings.HasPrefix(content, `{"v":1,"#title":`), "fields should keep a fixed order")
}

// TestSave_RewritesInOrder verifies Save keeps the header and replaces the
// records
func TestSave_RewritesInOrder(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("# header line\n"), 0o644))
	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)
	_, err = s.Append(samplePuzzle("Lighthouse"))
	require.NoError(t, err)

	puzzles, err := s.Load()
	require.NoError(t, err)
	puzzles[0].TOC = []puzzle.Entry{{Number: "1", Level: 0, Text: "Biology"}}

	require.NoError(t, s.Save(puzzles))

	content := readFile(t, s)
	assert.True(t, strings.HasPrefix(content, "# header line\n"))

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, puzzles, reloaded)
}

// TestSave_SameContentIsStable verifies load then save is byte-identical
func TestSave_SameContentIsStable(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Append(samplePuzzle("Penguin"))
	require.NoError(t, err)
	before := readFile(t, s)

	puzzles, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Save(puzzles))

	assert.Equal(t, before, readFile(t, s))
}

// TestSave_RejectsDuplicates verifies Save keeps URLs unique
func TestSave_RejectsDuplicates(t *testing.T) {
	s := createTestStore(t)

	err := s.Save([]puzzle.Puzzle{samplePuzzle("Penguin"), samplePuzzle("Penguin")})
	assert.ErrorIs(t, err, puzzle.ErrDuplicate)
}
