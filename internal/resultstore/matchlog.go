package resultstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"tourney/internal/tournament"
)

// MatchLog writes one JSON file per completed match, so individual
// verdicts can be inspected without digging through the full export.
// Write failures are logged, never raised: losing a match log must not
// interrupt a running tournament.
type MatchLog struct {
	dir string
	log *log.Logger
}

func NewMatchLog(dir string, logger *log.Logger) (*MatchLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("match log dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MatchLog{dir: dir, log: logger}, nil
}

func (l *MatchLog) write(tournamentID string, rec tournament.MatchRecord) {
	doc, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		l.log.Printf("match log: marshal %s: %v", rec.ID, err)
		return
	}
	path := filepath.Join(l.dir, tournamentID+"_"+rec.ID+".json")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		l.log.Printf("match log: write %s: %v", path, err)
	}
}

// MatchStarted is a no-op; only terminal matches are logged.
func (l *MatchLog) MatchStarted(t *tournament.Tournament, m *tournament.Match, index int) {}

func (l *MatchLog) MatchCompleted(t *tournament.Tournament, m *tournament.Match) {
	l.write(t.ID, m.Record())
}

func (l *MatchLog) Completed(t *tournament.Tournament) {}
