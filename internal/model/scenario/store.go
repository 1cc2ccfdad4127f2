package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v2"
)

const (
	rolePlaySuffix   = "-role-play.prompt.yml"
	evaluationSuffix = "-evaluation.prompt.yml"

	defaultDataDir = "data/scenarios"
	dockerAppPath  = "/app"
)

// Store exposes scenario retrieval for HTTP handlers.
type Store interface {
	List() []Summary
	FindByID(id string) (Scenario, bool)
}

// promptFile mirrors the GitHub prompt.yml layout the scenario files use.
type promptFile struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	Model           string `yaml:"model"`
	ModelParameters struct {
		Temperature *float64 `yaml:"temperature"`
		MaxTokens   *int     `yaml:"max_tokens"`
	} `yaml:"modelParameters"`
	Messages []struct {
		Role    string `yaml:"role"`
		Content string `yaml:"content"`
	} `yaml:"messages"`
}

func (p promptFile) instructions() string {
	if len(p.Messages) == 0 {
		return ""
	}
	return p.Messages[0].Content
}

// FileStore implements Store with scenarios loaded once from a directory of
// prompt files. A missing directory yields an empty store, not an error.
type FileStore struct {
	items map[string]Scenario
	order []string
}

// ResolveDir picks the scenario directory: an explicit override first, the
// container path when present, then the local checkout layout.
func ResolveDir(override string) string {
	if override != "" {
		return override
	}

	dockerDir := filepath.Join(dockerAppPath, defaultDataDir)
	if info, err := os.Stat(dockerDir); err == nil && info.IsDir() {
		return dockerDir
	}

	return defaultDataDir
}

// NewFileStore loads every *-role-play.prompt.yml in dir, pairing each with
// its *-evaluation.prompt.yml when one exists.
func NewFileStore(dir string) (*FileStore, error) {
	store := &FileStore{items: make(map[string]Scenario)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read scenario dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, rolePlaySuffix) {
			continue
		}

		id := strings.TrimSuffix(name, rolePlaySuffix)
		item, err := loadScenario(dir, id)
		if err != nil {
			return nil, err
		}

		store.items[id] = item
		store.order = append(store.order, id)
	}

	sort.Strings(store.order)
	return store, nil
}

func loadScenario(dir, id string) (Scenario, error) {
	rolePlay, err := readPromptFile(filepath.Join(dir, id+rolePlaySuffix))
	if err != nil {
		return Scenario{}, err
	}

	item := Scenario{
		ID:           id,
		Name:         rolePlay.Name,
		Description:  rolePlay.Description,
		Model:        rolePlay.Model,
		Temperature:  rolePlay.ModelParameters.Temperature,
		MaxTokens:    rolePlay.ModelParameters.MaxTokens,
		Instructions: rolePlay.instructions(),
	}

	evalPath := filepath.Join(dir, id+evaluationSuffix)
	if _, err := os.Stat(evalPath); err == nil {
		evaluation, err := readPromptFile(evalPath)
		if err != nil {
			return Scenario{}, err
		}
		item.EvaluationPrompt = evaluation.instructions()
	}

	return item, nil
}

func readPromptFile(path string) (promptFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return promptFile{}, fmt.Errorf("read prompt file %s: %w", path, err)
	}

	var parsed promptFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return promptFile{}, fmt.Errorf("parse prompt file %s: %w", path, err)
	}
	return parsed, nil
}

// List returns scenario summaries in stable filename order.
func (s *FileStore) List() []Summary {
	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Summary())
	}
	return out
}

// FindByID looks up a scenario by identifier.
func (s *FileStore) FindByID(id string) (Scenario, bool) {
	item, ok := s.items[id]
	return item, ok
}
