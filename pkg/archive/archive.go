// Package archive keeps a local JSONL record of completed triage sessions:
// one file per case under <dataDir>/cases, header line first, then one line
// per transcript turn, then the decision payloads. The archive is an audit
// convenience for the analyst; writes are best-effort and never interfere
// with the live stream view.
package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JothikaKumar2501/Scam-FraudResolutionFabric/pkg/api"
)

// recordType tags each JSONL line.
type recordType string

const (
	typeHeader   recordType = "case"
	typeTurn     recordType = "turn"
	typeDecision recordType = "decision"
)

// record is the tagged union written per line. Exactly one payload pointer
// is set.
type record struct {
	Type      recordType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`

	Header   *Header           `json:"case,omitempty"`
	Turn     *api.DialogueTurn `json:"turn,omitempty"`
	Decision *Decision         `json:"decision,omitempty"`
}

// Header is the first line of a case file.
type Header struct {
	CaseID    string    `json:"case_id"`
	SessionID string    `json:"session_id"`
	AlertID   string    `json:"alert_id"`
	Steps     int       `json:"steps"`
	Closed    time.Time `json:"closed"`
}

// Decision carries the final payloads of a session.
type Decision struct {
	PolicyDecision    string `json:"policy_decision,omitempty"`
	RiskDetermination string `json:"risk_determination,omitempty"`
}

// Info summarizes one archived case for listings.
type Info struct {
	CaseID  string
	Path    string
	AlertID string
	Turns   int
	Closed  time.Time
}

var errBadHeader = errors.New("case file missing header line")

// Archive writes and lists case files.
type Archive struct {
	dir string
	log *zap.Logger
}

func New(dataDir string, log *zap.Logger) *Archive {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archive{dir: filepath.Join(dataDir, "cases"), log: log}
}

// SaveCase records a finished session. Failures are logged and swallowed.
func (a *Archive) SaveCase(sessionID, alertID string, snap api.Snapshot, transcript []api.DialogueTurn) {
	caseID := snap.CaseID
	if caseID == "" {
		// Sessions that never acquired a case binding archive under the
		// session id so nothing is silently lost.
		caseID = sessionID
	}
	if err := a.write(caseID, sessionID, alertID, snap, transcript); err != nil {
		a.log.Warn("case archive write failed", zap.String("case", caseID), zap.Error(err))
	}
}

func (a *Archive) write(caseID, sessionID, alertID string, snap api.Snapshot, transcript []api.DialogueTurn) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(a.dir, sanitize(caseID)+".jsonl"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	now := time.Now().UTC()

	if err := enc.Encode(record{
		Type:      typeHeader,
		Timestamp: now,
		Header: &Header{
			CaseID:    caseID,
			SessionID: sessionID,
			AlertID:   alertID,
			Steps:     snap.CurrentStep,
			Closed:    now,
		},
	}); err != nil {
		return err
	}
	for i := range transcript {
		if err := enc.Encode(record{Type: typeTurn, Timestamp: now, Turn: &transcript[i]}); err != nil {
			return err
		}
	}
	dec := Decision{
		PolicyDecision:    api.StageText(snap.Stages["policy_decision"]),
		RiskDetermination: api.StageText(snap.Stages["final_risk_determination"]),
	}
	if dec.PolicyDecision != "" || dec.RiskDetermination != "" {
		if err := enc.Encode(record{Type: typeDecision, Timestamp: now, Decision: &dec}); err != nil {
			return err
		}
	}
	return w.Flush()
}

// List returns archived cases, most recently closed first. A file that does
// not parse is skipped.
func (a *Archive) List() []Info {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil
	}
	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := a.readInfo(filepath.Join(a.dir, e.Name()))
		if err != nil {
			a.log.Debug("skipping unreadable case file", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Closed.After(out[j].Closed) })
	return out
}

func (a *Archive) readInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	info := Info{Path: path}
	first := true
	for sc.Scan() {
		var rec record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return Info{}, err
		}
		if first {
			if rec.Type != typeHeader || rec.Header == nil {
				return Info{}, errBadHeader
			}
			info.CaseID = rec.Header.CaseID
			info.AlertID = rec.Header.AlertID
			info.Closed = rec.Header.Closed
			first = false
			continue
		}
		if rec.Type == typeTurn {
			info.Turns++
		}
	}
	if first {
		return Info{}, errBadHeader
	}
	return info, sc.Err()
}

// ReadTranscript loads the turns of an archived case.
func (a *Archive) ReadTranscript(path string) ([]api.DialogueTurn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var turns []api.DialogueTurn
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	for sc.Scan() {
		var rec record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Type == typeTurn && rec.Turn != nil {
			turns = append(turns, *rec.Turn)
		}
	}
	return turns, sc.Err()
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
