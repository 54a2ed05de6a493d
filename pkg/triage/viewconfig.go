package triage

// SortKey enumerates the sortable alert columns.
type SortKey string

const (
	SortByRisk   SortKey = "risk"
	SortByAmount SortKey = "amount"
	SortByDate   SortKey = "date"
)

// SortDir is the sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Preset names a fixed-rule filter over the queue.
type Preset string

const (
	PresetAll             Preset = "all"
	PresetHighRisk        Preset = "high-risk"
	PresetCardTesting     Preset = "card-testing"
	PresetAccountTakeover Preset = "account-takeover"
)

// Presets in display/cycling order.
var Presets = []Preset{PresetAll, PresetHighRisk, PresetCardTesting, PresetAccountTakeover}

// SortKeys in cycling order.
var SortKeys = []SortKey{SortByRisk, SortByAmount, SortByDate}

// highRiskThreshold is the score floor for the high-risk preset.
const highRiskThreshold = 800

// ViewConfig is the analyst's persisted list preference. It round-trips
// through durable storage, so stored values are revalidated on load rather
// than trusted.
type ViewConfig struct {
	Search  string  `json:"search"`
	SortKey SortKey `json:"sort_key"`
	SortDir SortDir `json:"sort_dir"`
	Preset  Preset  `json:"preset"`
}

// DefaultViewConfig is the view used before the analyst changes anything.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{SortKey: SortByRisk, SortDir: SortDesc, Preset: PresetAll}
}

// Normalize replaces unknown enumerated values with defaults. Corrupt stored
// data must degrade to the default view, never fail.
func (c ViewConfig) Normalize() ViewConfig {
	d := DefaultViewConfig()
	switch c.SortKey {
	case SortByRisk, SortByAmount, SortByDate:
	default:
		c.SortKey = d.SortKey
	}
	switch c.SortDir {
	case SortAsc, SortDesc:
	default:
		c.SortDir = d.SortDir
	}
	switch c.Preset {
	case PresetAll, PresetHighRisk, PresetCardTesting, PresetAccountTakeover:
	default:
		c.Preset = d.Preset
	}
	return c
}
