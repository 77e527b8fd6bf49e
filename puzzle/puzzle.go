package puzzle

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/google/uuid"
)

// Entry is one heading of an article's table of contents.
type Entry struct {
	Number string `json:"number"`
	Level  int    `json:"level"`
	Text   string `json:"text"`
}

// Puzzle is a single guessing-game unit: a hidden article title and URL plus
// the table of contents shown to the player.
type Puzzle struct {
	Title       string
	URL         string
	TOC         []Entry
	Contributor string
	Censor      string
}

// ID returns a stable identifier for the puzzle, derived from its URL.
func (p *Puzzle) ID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.URL))
}

// Validate checks the invariants every stored puzzle must hold.
func (p *Puzzle) Validate() error {
	if p.Title == "" {
		return errors.New("title is empty")
	}
	if p.URL == "" {
		return errors.New("url is empty")
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("url must use http or https scheme")
	}

	if len(p.TOC) == 0 {
		return errors.New("table of contents is empty")
	}

	if p.Censor != "" {
		if _, err := CompileCensor(p.Censor); err != nil {
			return err
		}
	}

	return nil
}

// LevelFromNumber returns the nesting depth of a section number such as
// "2.1.3" (depth 2).
func LevelFromNumber(number string) int {
	depth := 0
	for _, r := range number {
		if r == '.' {
			depth++
		}
	}
	return depth
}

// CensorText is what every censored match is replaced with.
const CensorText = "████████"

// CompileCensor compiles a censor phrase as a case-insensitive pattern.
func CompileCensor(censor string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + censor)
	if err != nil {
		return nil, fmt.Errorf("invalid censor pattern %q: %w", censor, err)
	}
	return re, nil
}

// ApplyCensor masks every case-insensitive match of censor in text. An empty
// censor leaves text unchanged.
func ApplyCensor(text, censor string) (string, error) {
	if censor == "" {
		return text, nil
	}
	re, err := CompileCensor(censor)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllLiteralString(text, CensorText), nil
}
