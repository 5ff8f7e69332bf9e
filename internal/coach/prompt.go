package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/rxdrill/internal/catalog"
)

const noteSystemPrompt = `You are a concise pharmacology tutor for pharmacy technician and nursing students. The learner just answered a flashcard about a drug wrongly and needs a short, accurate correction.`

func buildNoteUserMessage(in NoteInput) string {
	var b strings.Builder

	b.WriteString("Drug:\n")
	writeItem(&b, in.Item)
	fmt.Fprintf(&b, "\nMissed question type: %s\n", in.Kind)
	fmt.Fprintf(&b, "Mastery level (0-5): %d\n", in.MasteryLevel)
	if in.Misses > 1 {
		fmt.Fprintf(&b, "Missed %d times recently.\n", in.Misses)
	}

	if len(in.Peers) > 0 {
		b.WriteString("\nOften confused with:\n")
		for _, p := range in.Peers {
			writeItem(&b, p)
		}
	}

	b.WriteString(`
Instructions:
1. Write a headline stating the single fact the learner most needs.
2. Explain in 2-4 sentences what sets this drug apart from the drugs it is confused with. Use only the facts listed above.
3. Offer a short mnemonic if a natural one exists, otherwise return an empty string.
4. Write one check question with a one or two word answer.
Use plain text. Do not give dosing advice beyond the dosing note above.`)

	return b.String()
}

func writeItem(b *strings.Builder, it catalog.Item) {
	fmt.Fprintf(b, "- %s", it.PrimaryName)
	if it.AlternateName != "" {
		fmt.Fprintf(b, " (%s)", it.AlternateName)
	}
	fmt.Fprintf(b, ", class: %s\n", it.Category)
	if len(it.Uses) > 0 {
		fmt.Fprintf(b, "  uses: %s\n", strings.Join(it.Uses, "; "))
	}
	if len(it.Effects) > 0 {
		fmt.Fprintf(b, "  effects: %s\n", strings.Join(it.Effects, "; "))
	}
	if it.DosingNote != "" {
		fmt.Fprintf(b, "  dosing: %s\n", it.DosingNote)
	}
	if it.Fact != "" {
		fmt.Fprintf(b, "  fact: %s\n", it.Fact)
	}
}

const digestSystemPrompt = `You are summarizing a pharmacology student's recent flashcard mistakes. Be factual and brief.`

func buildDigestUserMessage(in DigestInput) string {
	var b strings.Builder

	b.WriteString("Mistakes, oldest first:\n")
	for _, m := range in.Mistakes {
		name := in.Names[m.ItemID]
		if name == "" {
			name = m.ItemID
		}
		fmt.Fprintf(&b, "- %s on %s (%s)\n", m.Kind, name, m.OccurredAt.Format("2006-01-02"))
	}

	b.WriteString(`
Instructions:
Summarize the patterns in 2-3 sentences: which drug classes, and which question types (brand names, uses, effects, dosing) cause trouble.
Then list 1-3 drugs or classes to review next.`)

	return b.String()
}
