// Package triage turns the fetched alert collection into the analyst's
// working view: search, preset filters, stable sorting, and CSV export. The
// source collection is held in original order and never mutated; Apply
// recomputes a derived slice on demand.
package triage

import (
	"sort"
	"strings"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

// Index holds the loaded alert queue.
type Index struct {
	alerts []api.Alert
}

// NewIndex wraps a fetched collection. The slice is treated as immutable
// after load.
func NewIndex(alerts []api.Alert) *Index {
	return &Index{alerts: alerts}
}

// Alerts returns the collection in original order.
func (ix *Index) Alerts() []api.Alert { return ix.alerts }

// Len returns the unfiltered queue size.
func (ix *Index) Len() int { return len(ix.alerts) }

// Apply computes the filtered, sorted view for cfg. Pure: repeated calls
// with the same config yield the same result, and equal sort keys keep their
// original relative order so re-sorting never visibly shuffles rows.
func (ix *Index) Apply(cfg ViewConfig) []api.Alert {
	cfg = cfg.Normalize()

	out := make([]api.Alert, 0, len(ix.alerts))
	search := strings.ToLower(strings.TrimSpace(cfg.Search))
	for _, a := range ix.alerts {
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		if !matchesPreset(a, cfg.Preset) {
			continue
		}
		out = append(out, a)
	}

	less := sortLess(cfg.SortKey)
	sort.SliceStable(out, func(i, j int) bool {
		if cfg.SortDir == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func matchesSearch(a api.Alert, term string) bool {
	return strings.Contains(strings.ToLower(a.AlertID), term) ||
		strings.Contains(strings.ToLower(a.Description), term)
}

func matchesPreset(a api.Alert, p Preset) bool {
	switch p {
	case PresetHighRisk:
		return a.RiskScore >= highRiskThreshold
	case PresetCardTesting:
		rule := strings.ToUpper(a.RuleID)
		return strings.Contains(rule, "CARD") || strings.Contains(strings.ToLower(a.Description), "card testing")
	case PresetAccountTakeover:
		rule := strings.ToUpper(a.RuleID)
		desc := strings.ToLower(a.Description)
		return strings.Contains(rule, "ATO") || strings.Contains(desc, "takeover")
	default:
		return true
	}
}

// sortLess builds the ascending comparator for a key. Missing values rank as
// zero (risk/amount) or the epoch (date).
func sortLess(key SortKey) func(a, b api.Alert) bool {
	switch key {
	case SortByAmount:
		return func(a, b api.Alert) bool { return a.Amount < b.Amount }
	case SortByDate:
		return func(a, b api.Alert) bool { return alertDate(a) < alertDate(b) }
	default:
		return func(a, b api.Alert) bool { return a.RiskScore < b.RiskScore }
	}
}

// alertDate flattens the lifecycle timestamp map into a sortable string.
// The backend writes ISO-ish dates, so lexical order is chronological; an
// absent date sorts first.
func alertDate(a api.Alert) string {
	if a.Timestamps == nil {
		return ""
	}
	d := a.Timestamps["alertDate"]
	t := a.Timestamps["alertTime"]
	if d == "" {
		d = a.Timestamps["created_at"]
	}
	return d + " " + t
}
