// Package learner owns one learner's persistent aggregate: progression
// stats, mastery and concept records, lesson scores and the mistake
// queue, and the operations that mutate them.
package learner

import (
	"encoding/json"
	"time"

	"github.com/abhisek/rxdrill/internal/mastery"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/spacedrep"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the persisted form of a learner.
type Snapshot struct {
	Version      int                              `json:"version"`
	Stats        progress.Stats                   `json:"stats"`
	LessonScores map[string]int                   `json:"lesson_scores"`
	LessonStars  map[string]int                   `json:"lesson_stars"`
	Mastery      map[string]spacedrep.Record      `json:"mastery"`
	Concepts     map[string]mastery.ConceptRecord `json:"concepts"`
	Mistakes     progress.MistakeQueue            `json:"mistakes"`
}

// Defaults returns the snapshot of a brand-new learner.
func Defaults(now time.Time) Snapshot {
	return Snapshot{
		Version:      SnapshotVersion,
		Stats:        progress.New(now),
		LessonScores: make(map[string]int),
		LessonStars:  make(map[string]int),
		Mastery:      make(map[string]spacedrep.Record),
		Concepts:     make(map[string]mastery.ConceptRecord),
	}
}

// Decode parses raw into a Snapshot. Unparseable input yields
// Defaults; a missing or unparseable field falls back to its default
// while the rest of the snapshot is kept. The second return reports
// whether anything had to be healed.
func Decode(raw []byte, now time.Time) (Snapshot, bool) {
	snap := Defaults(now)
	if len(raw) == 0 {
		return snap, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return snap, true
	}

	healed := false
	field := func(name string, dst any) bool {
		v, ok := fields[name]
		if !ok {
			healed = true
			return false
		}
		if err := json.Unmarshal(v, dst); err != nil {
			healed = true
			return false
		}
		return true
	}

	var version int
	field("version", &version)

	stats := progress.New(now)
	if v, ok := fields["stats"]; !ok || !decodeEach(v, &stats) {
		healed = true
	}
	snap.Stats = stats.Normalize(now)

	decodeMap(field, "lesson_scores", &snap.LessonScores)
	decodeMap(field, "lesson_stars", &snap.LessonStars)
	decodeMap(field, "mastery", &snap.Mastery)
	decodeMap(field, "concepts", &snap.Concepts)

	var mistakes progress.MistakeQueue
	if field("mistakes", &mistakes) {
		snap.Mistakes = mistakes
	}

	for id, stars := range snap.LessonStars {
		snap.LessonStars[id] = min(max(stars, 0), 3)
	}
	for id, score := range snap.LessonScores {
		snap.LessonScores[id] = min(max(score, 0), 100)
	}
	if version != SnapshotVersion {
		healed = true
	}
	return snap, healed
}

// decodeMap decodes one map field, leaving dst as an empty map when the
// field is absent, null or broken.
func decodeMap[M ~map[K]V, K comparable, V any](field func(string, any) bool, name string, dst *M) {
	var m M
	if !field(name, &m) || m == nil {
		m = make(M)
	}
	*dst = m
}

// decodeEach decodes the JSON object raw into dst one key at a time, so
// a key that fails to decode leaves only its own field at the value dst
// already held. It reports false when raw is not an object or any key
// failed.
func decodeEach(raw json.RawMessage, dst any) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return false
	}
	ok := true
	for k, v := range keys {
		one, err := json.Marshal(map[string]json.RawMessage{k: v})
		if err != nil || json.Unmarshal(one, dst) != nil {
			ok = false
		}
	}
	return ok
}

// Encode serializes s.
func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}
