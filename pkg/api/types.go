package api

import (
	"encoding/json"
	"fmt"
)

// TurnRole identifies the speaker of a dialogue turn.
type TurnRole string

const (
	RoleAssistant TurnRole = "assistant"
	RoleUser      TurnRole = "user"
	RoleSystem    TurnRole = "system"
	RoleRisk      TurnRole = "risk"
)

// DialogueTurn is one normalized entry of the case dialogue. The backend
// encodes assistant turns as {role, question} and user turns as {role, user};
// UnmarshalJSON folds both into Text.
type DialogueTurn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

func (t *DialogueTurn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role     TurnRole `json:"role"`
		Text     string   `json:"text"`
		Question string   `json:"question"`
		User     string   `json:"user"`
		Agent    string   `json:"agent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Role = raw.Role
	if t.Role == "" {
		// Legacy turns carry an agent name instead of a role.
		if raw.Agent != "" {
			t.Role = RoleAssistant
		} else {
			t.Role = RoleUser
		}
	}
	switch {
	case raw.Text != "":
		t.Text = raw.Text
	case raw.Question != "":
		t.Text = raw.Question
	default:
		t.Text = raw.User
	}
	return nil
}

// Snapshot is the full workflow state pushed by the backend at one point in
// time. It is never mutated after decode; each frame replaces the previous
// snapshot wholesale.
type Snapshot struct {
	Logs                 []string
	AgentResponses       []json.RawMessage
	Dialogue             []DialogueTurn
	CurrentStep          int
	TotalSteps           int
	StreamingAgent       string
	CaseID               string
	LatestRiskAssessment string

	// Stages holds every remaining top-level key of the state object, raw.
	// Historical selection resolves log-line text against this map before
	// falling back to positional AgentResponses lookup.
	Stages map[string]json.RawMessage
}

// snapshotWire is the strictly-typed subset of the state object.
type snapshotWire struct {
	Logs                 []string          `json:"logs"`
	AgentResponses       []json.RawMessage `json:"agent_responses"`
	Dialogue             []DialogueTurn    `json:"dialogue_history"`
	CurrentStep          int               `json:"current_step"`
	TotalSteps           int               `json:"total_steps"`
	StreamingAgent       string            `json:"streaming_agent"`
	CaseID               string            `json:"case_id"`
	LatestRiskAssessment string            `json:"latest_risk_assessment"`
}

var wireKeys = map[string]bool{
	"logs":                   true,
	"agent_responses":        true,
	"dialogue_history":       true,
	"current_step":           true,
	"total_steps":            true,
	"streaming_agent":        true,
	"case_id":                true,
	"latest_risk_assessment": true,
}

// ParseSnapshot decodes one stream frame. The frame must be a JSON object;
// anything else is rejected so the caller can drop the frame. Missing fields
// get zero values rather than failing.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot frame is not a JSON object: %w", err)
	}

	var wire snapshotWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot fields: %w", err)
	}

	s := Snapshot{
		Logs:                 wire.Logs,
		AgentResponses:       wire.AgentResponses,
		Dialogue:             wire.Dialogue,
		CurrentStep:          wire.CurrentStep,
		TotalSteps:           wire.TotalSteps,
		StreamingAgent:       wire.StreamingAgent,
		CaseID:               wire.CaseID,
		LatestRiskAssessment: wire.LatestRiskAssessment,
	}
	for k, v := range fields {
		if wireKeys[k] {
			continue
		}
		if s.Stages == nil {
			s.Stages = make(map[string]json.RawMessage, len(fields))
		}
		s.Stages[k] = v
	}
	return s, nil
}

// StageText renders a raw stage payload for display: plain strings as-is,
// anything structured pretty-printed.
func StageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// Alert is one read-only triage queue entry. The backend is inconsistent
// about snake_case vs camelCase ids, so both are accepted.
type Alert struct {
	AlertID     string            `json:"alert_id"`
	RuleID      string            `json:"rule_id"`
	CustomerID  string            `json:"customer_id"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	RiskScore   float64           `json:"risk_score"`
	Queue       string            `json:"queue"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	Description string            `json:"description"`
	Timestamps  map[string]string `json:"timestamps"`
}

func (a *Alert) UnmarshalJSON(data []byte) error {
	type alias Alert
	var aux struct {
		alias
		AlertIDCamel    string  `json:"alertId"`
		RuleIDCamel     string  `json:"ruleId"`
		CustomerIDCamel string  `json:"customerId"`
		RiskScoreCamel  float64 `json:"riskScore"`
		AlertDate       string  `json:"alertDate"`
		AlertTime       string  `json:"alertTime"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Alert(aux.alias)
	if a.AlertID == "" {
		a.AlertID = aux.AlertIDCamel
	}
	if a.RuleID == "" {
		a.RuleID = aux.RuleIDCamel
	}
	if a.CustomerID == "" {
		a.CustomerID = aux.CustomerIDCamel
	}
	if a.RiskScore == 0 {
		a.RiskScore = aux.RiskScoreCamel
	}
	if aux.AlertDate != "" {
		if a.Timestamps == nil {
			a.Timestamps = map[string]string{}
		}
		a.Timestamps["alertDate"] = aux.AlertDate
	}
	if aux.AlertTime != "" {
		if a.Timestamps == nil {
			a.Timestamps = map[string]string{}
		}
		a.Timestamps["alertTime"] = aux.AlertTime
	}
	return nil
}

// CaseMemory is one stored memory item for a case.
type CaseMemory struct {
	ID      string `json:"id"`
	Memory  string `json:"memory"`
	Created string `json:"created_at"`
}

// GraphResult is one hit from the case graph search.
type GraphResult struct {
	Source   string `json:"source"`
	Relation string `json:"relationship"`
	Target   string `json:"target"`
}
