package search

import (
	"math"
	"testing"
	"time"

	"github.com/soundprediction/quorum/pkg/types"
)

var intentNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestParseQuerySignals(t *testing.T) {
	signals := ParseQuerySignals("CAB minutes from 2021", intentNow)

	if signals.FileType != "minutes" {
		t.Errorf("FileType = %q, want minutes", signals.FileType)
	}
	if len(signals.Committees) != 1 || signals.Committees[0] != "CAB" {
		t.Errorf("Committees = %v, want [CAB]", signals.Committees)
	}
	if !signals.HasYears || signals.Years.From != 2021 {
		t.Errorf("Years = %+v (has=%v), want 2021", signals.Years, signals.HasYears)
	}
	if signals.MentionsDraft {
		t.Error("MentionsDraft should be false")
	}
	if signals.Count() != 3 {
		t.Errorf("Count = %d, want 3", signals.Count())
	}
}

func TestParseQuerySignalsFinalReport(t *testing.T) {
	signals := ParseQuerySignals("the final report on athletics", intentNow)
	if signals.FileType != "report" {
		t.Errorf("FileType = %q, want report", signals.FileType)
	}
}

func TestIntentScoreFileTypeMatch(t *testing.T) {
	signals := ParseQuerySignals("minutes about parking", intentNow)
	chunk := &types.Chunk{ID: "c1", Metadata: types.Metadata{FileType: "minutes"}}

	if got := IntentScore(signals, chunk, intentNow); got != 1.0 {
		t.Errorf("score = %f, want 1.0", got)
	}
}

func TestIntentScoreDraftPenalty(t *testing.T) {
	chunk := &types.Chunk{ID: "c1", Metadata: types.Metadata{Draft: true}}

	signals := ParseQuerySignals("parking policy", intentNow)
	if got := IntentScore(signals, chunk, intentNow); got != -0.5 {
		t.Errorf("score = %f, want -0.5", got)
	}

	// Asking about drafts lifts the penalty.
	signals = ParseQuerySignals("draft parking policy", intentNow)
	if got := IntentScore(signals, chunk, intentNow); got != 0 {
		t.Errorf("score = %f, want 0", got)
	}
}

func TestIntentScoreCommitteeAndYear(t *testing.T) {
	signals := ParseQuerySignals("what did CFS decide in 2022", intentNow)
	chunk := &types.Chunk{ID: "c1", Metadata: types.Metadata{
		CommitteeCodes: []string{"cfs"},
		Year:           2022,
	}}

	// +0.5 committee (case-insensitive) +0.3 year +0.2*decay(year-start date)
	got := IntentScore(signals, chunk, intentNow)
	if got < 0.8 {
		t.Errorf("score = %f, want at least 0.8", got)
	}
	if got > 1.0 {
		t.Errorf("score = %f, recency term should stay under 0.2", got)
	}
}

func TestIntentScoreRecencyDecay(t *testing.T) {
	signals := ParseQuerySignals("campus news", intentNow)

	fresh := &types.Chunk{ID: "a", Metadata: types.Metadata{FullDate: "2026-02-01"}}
	stale := &types.Chunk{ID: "b", Metadata: types.Metadata{FullDate: "2015-02-01"}}
	undated := &types.Chunk{ID: "c"}

	freshScore := IntentScore(signals, fresh, intentNow)
	staleScore := IntentScore(signals, stale, intentNow)
	undatedScore := IntentScore(signals, undated, intentNow)

	if freshScore <= staleScore {
		t.Errorf("fresh %f should beat stale %f", freshScore, staleScore)
	}
	if undatedScore != 0 {
		t.Errorf("undated chunk should contribute 0, got %f", undatedScore)
	}

	// One half-life (18 months) back should score half the boost.
	halfLife := &types.Chunk{ID: "d", Metadata: types.Metadata{FullDate: "2024-09-01"}}
	got := IntentScore(signals, halfLife, intentNow)
	if math.Abs(got-0.1) > 0.01 {
		t.Errorf("half-life score = %f, want ~0.1", got)
	}
}

func TestDeriveMMRLambda(t *testing.T) {
	vague := ParseQuerySignals("tell me about parking", intentNow)
	if got := DeriveMMRLambda(vague); got != 0.5 {
		t.Errorf("vague lambda = %f, want 0.5", got)
	}

	specific := ParseQuerySignals("CAB minutes from 2021", intentNow)
	if got := DeriveMMRLambda(specific); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("specific lambda = %f, want 0.9 (capped)", got)
	}
}
