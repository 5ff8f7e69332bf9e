package quiz

import (
	"fmt"

	"github.com/abhisek/rxdrill/internal/catalog"
)

// NewIntro builds the teaching card for a concept, anchored on item. The
// card closes with a check asking which drug illustrates the concept;
// when no distractors exist the card is acknowledge-only.
func (g *Generator) NewIntro(concept catalog.Concept, item catalog.Item) (*Pearl, error) {
	b := g.base(KindPearl, item, PhaseIntro, fmt.Sprintf("Which drug illustrates %q?", concept.Title))
	b.ConceptID = concept.ID

	var options []string
	answer := item.PrimaryName
	distractors := Distractors(g.rng, answer, nil, without(g.names, conceptNames(g.cat, concept)), distractorCount)
	if len(distractors) > 0 {
		options = withAnswer(g.rng, answer, distractors)
	} else {
		answer = ""
	}
	return newPearl(b, concept.Title, concept.Body, options, answer)
}

// conceptNames lists every drug that would also be a right answer: the
// concept's own items and their class peers.
func conceptNames(cat *catalog.Catalog, concept catalog.Concept) []string {
	var out []string
	for _, it := range cat.ItemsByID(concept.ItemIDs) {
		out = append(out, primaryNames(cat.ByCategory(it.Category))...)
	}
	return out
}
