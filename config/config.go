package config

// Defaults used when neither the config file nor the environment sets a
// value.
const (
	DefaultPuzzlesPath = "puzzles.txt"
	DefaultOutputPath  = "docs/index.html"
	DefaultPageTitle   = "Wiki Game"
	DefaultRepoURL     = "https://github.com/zbanks/wiki-game"
)

// Environment variables, which take priority over the config file.
const (
	EnvPuzzles     = "WIKIGAME_PUZZLES"
	EnvOutput      = "WIKIGAME_OUTPUT"
	EnvContributor = "WIKIGAME_CONTRIBUTOR"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	PuzzlesPath string
	OutputPath  string
	Contributor string
	PageTitle   string
	RepoURL     string
}

// Resolve merges configuration with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values (lowest priority)
//
// file may be nil. getenv is usually os.Getenv. Command line flags are
// applied on top by the caller.
func Resolve(file *FileConfig, getenv func(string) string) Settings {
	// Set defaults
	s := Settings{
		PuzzlesPath: DefaultPuzzlesPath,
		OutputPath:  DefaultOutputPath,
		PageTitle:   DefaultPageTitle,
		RepoURL:     DefaultRepoURL,
	}

	// Apply config file values (if loaded)
	if file != nil {
		if file.Puzzles != "" {
			s.PuzzlesPath = file.Puzzles
		}
		if file.Output != "" {
			s.OutputPath = file.Output
		}
		if file.Contributor != "" {
			s.Contributor = file.Contributor
		}
		if file.Page.Title != "" {
			s.PageTitle = file.Page.Title
		}
		if file.Page.RepoURL != "" {
			s.RepoURL = file.Page.RepoURL
		}
	}

	// Apply environment variables (highest priority)
	if val := getenv(EnvPuzzles); val != "" {
		s.PuzzlesPath = val
	}
	if val := getenv(EnvOutput); val != "" {
		s.OutputPath = val
	}
	if val := getenv(EnvContributor); val != "" {
		s.Contributor = val
	}

	return s
}
