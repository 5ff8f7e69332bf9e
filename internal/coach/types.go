// Package coach asks an LLM for short remediation notes on drugs the
// learner keeps missing. The engine works without it.
package coach

import (
	"time"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/progress"
)

// Note is a remediation card for one missed item.
type Note struct {
	ItemID      string
	Headline    string
	Explanation string
	Mnemonic    string
	Check       CheckQuestion
}

// CheckQuestion is a single self-test line shown after the note.
type CheckQuestion struct {
	Prompt string
	Answer string
}

// NoteInput is everything the prompt needs about one mistake.
type NoteInput struct {
	Item catalog.Item
	// Kind is the question archetype that was missed.
	Kind string
	// Peers are drugs the learner is likely confusing it with.
	Peers        []catalog.Item
	MasteryLevel int
	// Misses counts queued mistakes on the same item.
	Misses int
}

// Digest summarises a learner's mistake queue.
type Digest struct {
	Summary     string
	Focus       []string
	GeneratedAt time.Time
}

// DigestInput is the mistake queue plus the names needed to render it.
type DigestInput struct {
	Mistakes []progress.Mistake
	Names    map[string]string
}
