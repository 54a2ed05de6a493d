package triage

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

// csvHeader is the exported column set, in order. Also used as the default
// header when the filtered set is empty.
var csvHeader = []string{
	"alert_id", "rule_id", "customer_id", "amount", "currency",
	"risk_score", "queue", "priority", "status", "description", "timestamps",
}

// ExportCSV writes rows as a quoted comma-separated table with a header row.
// Every field is stringified; newlines inside text fields are collapsed to
// spaces before writing, and encoding/csv doubles embedded quotes, so a
// consumer never sees a raw newline or an unescaped quote inside a row.
func ExportCSV(w io.Writer, rows []api.Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range rows {
		rec := []string{
			a.AlertID,
			a.RuleID,
			a.CustomerID,
			strconv.FormatFloat(a.Amount, 'f', -1, 64),
			a.Currency,
			strconv.FormatFloat(a.RiskScore, 'f', -1, 64),
			a.Queue,
			a.Priority,
			a.Status,
			a.Description,
			timestampsField(a.Timestamps),
		}
		for i, f := range rec {
			rec[i] = collapseNewlines(f)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// timestampsField flattens the lifecycle map into "k=v" pairs in key order
// so exports are deterministic.
func timestampsField(ts map[string]string) string {
	if len(ts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ts))
	for k := range ts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, ts[k]))
	}
	return strings.Join(parts, "; ")
}
