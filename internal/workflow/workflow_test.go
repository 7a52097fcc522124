package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealmatch/internal/model"
)

func TestStepsCanonicalOrder(t *testing.T) {
	got := Steps(1)
	require.Len(t, got, 5)

	titles := make([]string, len(got))
	for i, s := range got {
		titles[i] = s.Title
		assert.Equal(t, i+1, s.ID)
	}
	assert.Equal(t, []string{
		"Initial Interest",
		"Document Exchange",
		"Valuation & Terms",
		"Due Diligence",
		"Legal & Closing",
	}, titles)
}

func TestStepsStatusDerivation(t *testing.T) {
	got := Steps(3)
	assert.Equal(t, StatusCompleted, got[0].Status)
	assert.Equal(t, StatusCompleted, got[1].Status)
	assert.Equal(t, StatusActive, got[2].Status)
	assert.Equal(t, StatusPending, got[3].Status)
	assert.Equal(t, StatusPending, got[4].Status)
}

func TestStepsDoesNotMutateCanonical(t *testing.T) {
	first := Steps(5)
	assert.Equal(t, StatusActive, first[4].Status)

	second := Steps(1)
	assert.Equal(t, StatusActive, second[0].Status)
	assert.Equal(t, StatusPending, second[4].Status)
}

func TestLookup(t *testing.T) {
	s, err := Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, "Document Exchange", s.Title)
	assert.Len(t, s.RequiredDocuments, 5)
	assert.Equal(t, "3-5 days", s.EstimatedDuration)

	_, err = Lookup(0)
	assert.Error(t, err)
	_, err = Lookup(6)
	assert.Error(t, err)
}

func TestAdvance(t *testing.T) {
	m := &model.Match{ID: "m-1", Status: model.MatchStatusMatched, CurrentStep: 1}

	require.NoError(t, Advance(m))
	assert.Equal(t, 2, m.CurrentStep)
	assert.Equal(t, model.MatchStatusInNegotiation, m.Status)

	for m.CurrentStep < StepCount() {
		require.NoError(t, Advance(m))
	}
	assert.Equal(t, 5, m.CurrentStep)
	assert.Equal(t, model.MatchStatusInNegotiation, m.Status)

	// Advancing past the final step completes the deal.
	require.NoError(t, Advance(m))
	assert.Equal(t, model.MatchStatusCompleted, m.Status)
	assert.Equal(t, 5, m.CurrentStep)
}

func TestAdvanceTerminalStates(t *testing.T) {
	rejected := &model.Match{ID: "m-1", Status: model.MatchStatusRejected, CurrentStep: 2}
	err := Advance(rejected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	assert.Equal(t, 2, rejected.CurrentStep)

	done := &model.Match{ID: "m-2", Status: model.MatchStatusCompleted, CurrentStep: 5}
	err = Advance(done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already completed")
}

func TestProgress(t *testing.T) {
	m := &model.Match{Status: model.MatchStatusInNegotiation, CurrentStep: 3}
	completed, total := Progress(m)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 5, total)

	m.Status = model.MatchStatusCompleted
	m.CurrentStep = 5
	completed, total = Progress(m)
	assert.Equal(t, 5, completed)
	assert.Equal(t, 5, total)
}
