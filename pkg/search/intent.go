package search

import (
	"math"
	"strings"
	"time"

	"github.com/soundprediction/quorum/pkg/types"
)

// Intent prior boosts. Additive, each independently triggerable.
const (
	fileTypeBoost  = 1.0
	draftPenalty   = 0.5
	committeeBoost = 0.5
	yearBoost      = 0.3
	recencyBoost   = 0.2
)

// recencyHalfLife is the half-life of the recency decay term.
const recencyHalfLife = 18 * 30 * 24 * time.Hour // 18 months

// knownFileTypes maps query phrasing to the file_type metadata vocabulary.
// Multi-word phrases are checked before their single-word suffixes.
var knownFileTypes = []struct {
	term     string
	fileType string
}{
	{"final report", "report"},
	{"minutes", "minutes"},
	{"resolution", "resolution"},
	{"report", "report"},
	{"agenda", "agenda"},
}

// knownCommittees are the committee and body codes recognized in query text.
var knownCommittees = []string{
	"SEC", "CAB", "CAPP", "CFS", "COA", "COR", "CSA", "GEC", "CORGE", "MFS",
}

// QuerySignals are the structural cues extracted from a query's phrasing,
// independent of its lexical or semantic content.
type QuerySignals struct {
	// FileType is the document type the query asks for, empty if none.
	FileType string
	// Committees are the committee codes named in the query, upper-cased.
	Committees []string
	// Years is the year window named in the query.
	Years YearWindow
	// HasYears reports whether the query named any year window.
	HasYears bool
	// MentionsDraft reports whether the query explicitly asks about drafts.
	MentionsDraft bool
}

// Count returns how many of the three specificity signals are present.
// Used to derive the MMR lambda: more specific queries want less diversity.
func (s *QuerySignals) Count() int {
	n := 0
	if s.FileType != "" {
		n++
	}
	if len(s.Committees) > 0 {
		n++
	}
	if s.HasYears {
		n++
	}
	return n
}

// ParseQuerySignals extracts structural signals from a query.
func ParseQuerySignals(query string, now time.Time) *QuerySignals {
	q := strings.ToLower(query)
	signals := &QuerySignals{
		MentionsDraft: strings.Contains(q, "draft"),
	}

	for _, ft := range knownFileTypes {
		if strings.Contains(q, ft.term) {
			signals.FileType = ft.fileType
			break
		}
	}

	tokens := Tokenize(query)
	for _, code := range knownCommittees {
		lower := strings.ToLower(code)
		for _, tok := range tokens {
			if tok == lower {
				signals.Committees = append(signals.Committees, code)
				break
			}
		}
	}

	signals.Years, signals.HasYears = ParseYearWindow(query, now)

	return signals
}

// IntentScore computes the heuristic prior for one chunk given the query's
// signals. The result is unbounded on both sides; the ranker min-max
// normalizes it before blending.
func IntentScore(signals *QuerySignals, chunk *types.Chunk, now time.Time) float64 {
	var score float64
	m := &chunk.Metadata

	if signals.FileType != "" && strings.EqualFold(m.FileType, signals.FileType) {
		score += fileTypeBoost
	}

	if m.Draft && !signals.MentionsDraft {
		score -= draftPenalty
	}

	if len(signals.Committees) > 0 {
	committees:
		for _, want := range signals.Committees {
			for _, have := range m.CommitteeCodes {
				if strings.EqualFold(want, have) {
					score += committeeBoost
					break committees
				}
			}
			if strings.EqualFold(want, m.BodyCode) {
				score += committeeBoost
				break
			}
		}
	}

	if signals.HasYears && m.Year > 0 && signals.Years.Contains(m.Year) {
		score += yearBoost
	}

	if date := m.Date(); !date.IsZero() {
		age := now.Sub(date)
		if age < 0 {
			age = 0
		}
		decay := math.Exp2(-age.Hours() / recencyHalfLife.Hours())
		score += recencyBoost * decay
	}

	return score
}
