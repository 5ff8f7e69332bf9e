package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcept_ThreeWrongsAfterMasteryForget(t *testing.T) {
	ct := NewConceptTracker(nil)
	ct.Update("c", true, t0)
	assert.True(t, ct.IsMastered("c"))

	ct.Update("c", false, t0)
	ct.Update("c", false, t0)
	assert.True(t, ct.IsMastered("c"), "two wrongs keep mastery")

	r := ct.Update("c", false, t0)
	assert.False(t, ct.IsMastered("c"))
	assert.Equal(t, 0, r.WrongSinceMastered)
	assert.Equal(t, 0, r.CorrectStreak)
}

func TestConcept_WrongsBeforeMasteryChangeNothing(t *testing.T) {
	ct := NewConceptTracker(nil)
	for i := 0; i < 5; i++ {
		r := ct.Update("c", false, t0)
		assert.False(t, r.Mastered)
		assert.Equal(t, 0, r.WrongSinceMastered)
	}
}

func TestConcept_CorrectResetsWrongCounter(t *testing.T) {
	ct := NewConceptTracker(nil)
	ct.Update("c", true, t0)
	ct.Update("c", false, t0)
	ct.Update("c", false, t0)
	r := ct.Update("c", true, t0)
	assert.Equal(t, 0, r.WrongSinceMastered)
	assert.Equal(t, 1, r.CorrectStreak)

	ct.Update("c", false, t0)
	ct.Update("c", false, t0)
	assert.True(t, ct.IsMastered("c"))
}

func TestConcept_CorrectStreakCounts(t *testing.T) {
	ct := NewConceptTracker(nil)
	ct.Update("c", true, t0)
	r := ct.Update("c", true, t0)
	assert.Equal(t, 2, r.CorrectStreak)
	assert.Equal(t, t0, r.UpdatedAt)
}

func TestConcept_UnknownIsNotMastered(t *testing.T) {
	assert.False(t, NewConceptTracker(nil).IsMastered("nope"))
}

func TestConcept_NewTrackerHealsCounters(t *testing.T) {
	ct := NewConceptTracker(map[string]ConceptRecord{
		"a": {Mastered: false, WrongSinceMastered: 2},
		"b": {Mastered: true, CorrectStreak: -4},
	})
	r, _ := ct.Record("a")
	assert.Equal(t, 0, r.WrongSinceMastered)
	r, _ = ct.Record("b")
	assert.Equal(t, 0, r.CorrectStreak)
}
