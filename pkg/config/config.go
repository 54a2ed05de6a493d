// Package config persists the console's durable client-side state: the
// backend base URL override and the analyst's serialized view preferences.
// Reads tolerate missing or corrupt files by falling back to defaults;
// writes are best-effort.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/triage"
)

// State is everything the console keeps between runs.
type State struct {
	APIBaseURL string            `json:"api_base_url,omitempty"`
	View       triage.ViewConfig `json:"view"`
}

// Default returns the state used when nothing is stored.
func Default() State {
	return State{View: triage.DefaultViewConfig()}
}

// DefaultDir returns the per-user data directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fraudfabric"
	}
	return filepath.Join(home, ".fraudfabric")
}

// Path returns the state file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, "state.json")
}

// Load reads state from dir. A missing or unreadable file, or one that does
// not parse, yields defaults; enumerated view values are normalized so a
// corrupted sort key cannot leak into the UI.
func Load(dir string) State {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return Default()
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return Default()
	}
	st.View = st.View.Normalize()
	return st
}

// Save writes state to dir, creating it as needed.
func Save(dir string, st State) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), data, 0o644)
}
