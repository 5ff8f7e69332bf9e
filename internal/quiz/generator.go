package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/rxdrill/internal/catalog"
)

const (
	// randomKindChance is the probability Next picks a uniformly random
	// archetype instead of the next one in round-robin order.
	randomKindChance = 0.30

	// distractorCount is the number of wrong options on choice questions.
	distractorCount = 3

	// multiSelectOptions is the total option count on multi-select questions.
	multiSelectOptions = 5

	minMatchPairs = 4

	blank = "_____"
)

// positiveOf maps each negation archetype to its positive counterpart.
var positiveOf = map[Kind]Kind{
	KindNotAUse:     KindUseOf,
	KindNotAnEffect: KindEffectOf,
}

// Generator composes questions for catalog items. It holds a round-robin
// cursor, so one Generator should serve one session.
type Generator struct {
	cat    *catalog.Catalog
	rng    *rand.Rand
	kinds  []Kind
	cursor int

	names      []string
	brands     []string
	categories []string
	uses       []string
	effects    []string
	facts      []string
}

// NewGenerator creates a Generator over the catalog using rng for every
// random choice.
func NewGenerator(cat *catalog.Catalog, rng *rand.Rand) *Generator {
	g := &Generator{
		cat:        cat,
		rng:        rng,
		kinds:      AllKinds(),
		categories: cat.Categories(),
	}
	seenUse := make(map[string]bool)
	seenEffect := make(map[string]bool)
	for _, it := range cat.Items() {
		g.names = append(g.names, it.PrimaryName)
		if it.AlternateName != "" {
			g.brands = append(g.brands, it.AlternateName)
		}
		if it.Fact != "" {
			g.facts = append(g.facts, it.Fact)
		}
		for _, u := range it.Uses {
			if !seenUse[normalize(u)] {
				seenUse[normalize(u)] = true
				g.uses = append(g.uses, u)
			}
		}
		for _, e := range it.Effects {
			if !seenEffect[normalize(e)] {
				seenEffect[normalize(e)] = true
				g.effects = append(g.effects, e)
			}
		}
	}
	return g
}

// Next picks an archetype for item and builds it. Archetypes that cannot
// be built from pool are skipped in favour of the next one.
func (g *Generator) Next(item catalog.Item, phase Phase, pool []catalog.Item) (Question, error) {
	var start int
	if g.rng.Float64() < randomKindChance {
		start = g.rng.IntN(len(g.kinds))
	} else {
		start = g.cursor % len(g.kinds)
		g.cursor++
	}
	var lastErr error
	for i := range g.kinds {
		kind := g.kinds[(start+i)%len(g.kinds)]
		q, err := g.ForKind(kind, item, phase, pool)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no archetype for item %q: %w", item.ID, errors.Join(ErrUnavailable, lastErr))
}

// Random builds a question of a uniformly random archetype drawn from
// kinds, trying the others in turn if it is unavailable.
func (g *Generator) Random(kinds []Kind, item catalog.Item, phase Phase, pool []catalog.Item) (Question, error) {
	if len(kinds) == 0 {
		kinds = g.kinds
	}
	start := g.rng.IntN(len(kinds))
	var lastErr error
	for i := range kinds {
		q, err := g.ForKind(kinds[(start+i)%len(kinds)], item, phase, pool)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no archetype for item %q: %w", item.ID, lastErr)
}

// ForKind builds a question of the given archetype. A negation with no
// absent value falls back to its positive archetype; any other missing
// field falls back to class-of. Matching returns ErrUnavailable when
// the pool is too small.
func (g *Generator) ForKind(kind Kind, item catalog.Item, phase Phase, pool []catalog.Item) (Question, error) {
	q, err := g.build(kind, item, phase, pool)
	if err == nil {
		return q, nil
	}
	if errors.Is(err, ErrUnavailable) {
		return nil, err
	}
	if pos, ok := positiveOf[kind]; ok && errors.Is(err, errNoAbsent) {
		if q, perr := g.build(pos, item, phase, pool); perr == nil {
			return q, nil
		}
	}
	if kind == KindClassOf {
		return nil, err
	}
	q, cerr := g.build(KindClassOf, item, phase, pool)
	if cerr != nil {
		return nil, fmt.Errorf("build %s for %q: %w", kind, item.ID, cerr)
	}
	return q, nil
}

func (g *Generator) base(kind Kind, item catalog.Item, phase Phase, prompt string) Base {
	return Base{
		ID:          uuid.NewString(),
		Kind:        kind,
		ItemID:      item.ID,
		Phase:       phase,
		Prompt:      prompt,
		Explanation: explain(item),
	}
}

func (g *Generator) build(kind Kind, it catalog.Item, phase Phase, pool []catalog.Item) (Question, error) {
	similar := g.cat.Similar(it)

	switch kind {
	case KindBrandToGeneric:
		if it.AlternateName == "" {
			return nil, fmt.Errorf("%s: item %q has no alternate name", kind, it.ID)
		}
		b := g.base(kind, it, phase, fmt.Sprintf("What is the generic name of %s?", it.AlternateName))
		opts := withAnswer(g.rng, it.PrimaryName, Distractors(g.rng, it.PrimaryName, primaryNames(similar), g.names, distractorCount))
		return newReverseRecall(b, opts, it.PrimaryName)

	case KindGenericToBrand:
		if it.AlternateName == "" {
			return nil, fmt.Errorf("%s: item %q has no alternate name", kind, it.ID)
		}
		b := g.base(kind, it, phase, fmt.Sprintf("What is the brand name of %s?", it.PrimaryName))
		opts := withAnswer(g.rng, it.AlternateName, Distractors(g.rng, it.AlternateName, alternateNames(similar), g.brands, distractorCount))
		return newRecall(b, opts, it.AlternateName)

	case KindClassOf:
		b := g.base(kind, it, phase, fmt.Sprintf("Which drug class does %s belong to?", it.PrimaryName))
		opts := withAnswer(g.rng, it.Category, Distractors(g.rng, it.Category, categoriesOf(similar), g.categories, distractorCount))
		return newRecall(b, opts, it.Category)

	case KindUseOf, KindEffectOf:
		own, all, similarVals, noun := g.attribute(kind, it, similar)
		if len(own) == 0 {
			return nil, fmt.Errorf("%s: item %q has no %s", kind, it.ID, noun)
		}
		answer := own[g.rng.IntN(len(own))]
		b := g.base(kind, it, phase, fmt.Sprintf("Which of these is %s of %s?", article(noun), it.PrimaryName))
		opts := withAnswer(g.rng, answer, Distractors(g.rng, answer, without(similarVals, own), without(all, own), distractorCount))
		return newRecall(b, opts, answer)

	case KindDrugForUse, KindDrugForEffect:
		own, _, _, noun := g.attribute(kind, it, similar)
		if len(own) == 0 {
			return nil, fmt.Errorf("%s: item %q has no %s", kind, it.ID, noun)
		}
		value := own[g.rng.IntN(len(own))]
		var prompt string
		if kind == KindDrugForUse {
			prompt = fmt.Sprintf("Which drug is used for %s?", value)
		} else {
			prompt = fmt.Sprintf("Which drug is known for causing %s?", strings.ToLower(value))
		}
		b := g.base(kind, it, phase, prompt)
		lacking := func(items []catalog.Item) []string {
			var out []string
			for _, o := range items {
				vals := o.Uses
				if kind == KindDrugForEffect {
					vals = o.Effects
				}
				if !containsFold(vals, value) {
					out = append(out, o.PrimaryName)
				}
			}
			return out
		}
		opts := withAnswer(g.rng, it.PrimaryName, Distractors(g.rng, it.PrimaryName, lacking(similar), lacking(g.cat.Items()), distractorCount))
		return newReverseRecall(b, opts, it.PrimaryName)

	case KindClozeFact, KindClozeDosing:
		source := it.Fact
		if kind == KindClozeDosing {
			source = it.DosingNote
		}
		text, ok := blankOut(source, it.PrimaryName)
		if !ok {
			return nil, fmt.Errorf("%s: item %q text does not mention %s", kind, it.ID, it.PrimaryName)
		}
		b := g.base(kind, it, phase, "Fill in the blank.")
		opts := withAnswer(g.rng, it.PrimaryName, Distractors(g.rng, it.PrimaryName, primaryNames(similar), g.names, distractorCount))
		return newCloze(b, text, opts, it.PrimaryName)

	case KindNotAUse, KindNotAnEffect:
		own, all, similarVals, noun := g.attribute(kind, it, similar)
		if len(own) == 0 {
			return nil, fmt.Errorf("%s: item %q has no %s", kind, it.ID, noun)
		}
		absent := Distractors(g.rng, "", without(similarVals, own), without(all, own), 1)
		if len(absent) == 0 {
			return nil, errNoAbsent
		}
		shown := sample(g.rng, own, distractorCount)
		b := g.base(kind, it, phase, fmt.Sprintf("Which of these is NOT %s of %s?", article(noun), it.PrimaryName))
		return newNegation(b, withAnswer(g.rng, absent[0], shown), absent[0])

	case KindSelectUses, KindSelectEffects:
		own, all, similarVals, noun := g.attribute(kind, it, similar)
		answers := sample(g.rng, own, multiSelectOptions-2)
		wrong := Distractors(g.rng, "", without(similarVals, own), without(all, own), multiSelectOptions-len(answers))
		opts := append(append([]string{}, answers...), wrong...)
		g.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		b := g.base(kind, it, phase, fmt.Sprintf("Select every %s of %s.", noun, it.PrimaryName))
		return newMultiSelect(b, opts, answers)

	case KindTrueFalseClass:
		truth := g.rng.IntN(2) == 0
		category := it.Category
		if !truth {
			others := Distractors(g.rng, it.Category, categoriesOf(similar), g.categories, 1)
			if len(others) == 0 {
				truth = true
			} else {
				category = others[0]
			}
		}
		b := g.base(kind, it, phase, "True or false?")
		return newTrueFalse(b, fmt.Sprintf("%s is %s %s.", it.PrimaryName, indefinite(category), category), truth)

	case KindMatchNames:
		pairs := g.matchPairs(it, pool)
		if len(pairs) < minMatchPairs {
			return nil, ErrUnavailable
		}
		rights := make([]string, len(pairs))
		for i, p := range pairs {
			rights[i] = p.Right
		}
		g.rng.Shuffle(len(rights), func(i, j int) { rights[i], rights[j] = rights[j], rights[i] })
		b := g.base(kind, it, phase, "Match each generic name to its brand name.")
		return newMatching(b, pairs, rights)

	case KindSameClass:
		var peers []string
		for _, o := range g.cat.ByCategory(it.Category) {
			if o.ID != it.ID {
				peers = append(peers, o.PrimaryName)
			}
		}
		if len(peers) == 0 {
			return nil, fmt.Errorf("%s: item %q has no class peers", kind, it.ID)
		}
		answer := peers[g.rng.IntN(len(peers))]
		classmates := append(peers, it.PrimaryName)
		var familyOther []string
		for _, o := range similar {
			if o.Category != it.Category {
				familyOther = append(familyOther, o.PrimaryName)
			}
		}
		b := g.base(kind, it, phase, fmt.Sprintf("Which drug is in the same class as %s?", it.PrimaryName))
		opts := withAnswer(g.rng, answer, Distractors(g.rng, answer, familyOther, without(g.names, classmates), distractorCount))
		return newClassComparison(b, opts, answer)

	case KindPearl:
		if it.Fact == "" {
			return nil, fmt.Errorf("%s: item %q has no fact", kind, it.ID)
		}
		var similarFacts []string
		for _, o := range similar {
			if o.Fact != "" {
				similarFacts = append(similarFacts, o.Fact)
			}
		}
		scenario := fmt.Sprintf("A patient is being started on %s.", it.PrimaryName)
		if len(it.Uses) > 0 {
			scenario = fmt.Sprintf("A patient with %s is being started on %s.", strings.ToLower(it.Uses[0]), it.PrimaryName)
		}
		b := g.base(kind, it, phase, scenario+" Which clinical pearl applies?")
		opts := withAnswer(g.rng, it.Fact, Distractors(g.rng, it.Fact, similarFacts, g.facts, distractorCount))
		return newPearl(b, "", "", opts, it.Fact)
	}
	return nil, fmt.Errorf("unknown archetype %q", kind)
}

// attribute returns the item's own values, the catalog-wide values, the
// values of similar items, and a noun for prompts.
func (g *Generator) attribute(kind Kind, it catalog.Item, similar []catalog.Item) (own, all, similarVals []string, noun string) {
	switch kind {
	case KindEffectOf, KindDrugForEffect, KindNotAnEffect, KindSelectEffects:
		for _, o := range similar {
			similarVals = append(similarVals, o.Effects...)
		}
		return it.Effects, g.effects, similarVals, "adverse effect"
	default:
		for _, o := range similar {
			similarVals = append(similarVals, o.Uses...)
		}
		return it.Uses, g.uses, similarVals, "use"
	}
}

// matchPairs picks the item plus up to three distinct pool items that
// carry a brand name.
func (g *Generator) matchPairs(it catalog.Item, pool []catalog.Item) []Pair {
	if it.AlternateName == "" {
		return nil
	}
	seen := map[string]bool{it.ID: true}
	brands := map[string]bool{normalize(it.AlternateName): true}
	var candidates []catalog.Item
	for _, o := range pool {
		if seen[o.ID] || o.AlternateName == "" || brands[normalize(o.AlternateName)] {
			continue
		}
		seen[o.ID] = true
		brands[normalize(o.AlternateName)] = true
		candidates = append(candidates, o)
	}
	if len(candidates) < minMatchPairs-1 {
		return nil
	}
	pairs := []Pair{{Left: it.PrimaryName, Right: it.AlternateName}}
	for _, i := range g.rng.Perm(len(candidates))[:minMatchPairs-1] {
		pairs = append(pairs, Pair{Left: candidates[i].PrimaryName, Right: candidates[i].AlternateName})
	}
	g.rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	return pairs
}

// explain summarizes an item for post-answer feedback.
func explain(it catalog.Item) string {
	var sb strings.Builder
	sb.WriteString(it.PrimaryName)
	if it.AlternateName != "" {
		fmt.Fprintf(&sb, " (%s)", it.AlternateName)
	}
	fmt.Fprintf(&sb, " is %s %s", indefinite(it.Category), it.Category)
	if len(it.Uses) > 0 {
		fmt.Fprintf(&sb, " used for %s", strings.Join(it.Uses, ", "))
	}
	sb.WriteString(".")
	if len(it.Effects) > 0 {
		fmt.Fprintf(&sb, " Watch for %s.", strings.ToLower(strings.Join(it.Effects, ", ")))
	}
	return sb.String()
}

// blankOut replaces every case-insensitive occurrence of name in text.
func blankOut(text, name string) (string, bool) {
	if text == "" || name == "" {
		return "", false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if !re.MatchString(text) {
		return "", false
	}
	return re.ReplaceAllString(text, blank), true
}

func sample(rng *rand.Rand, values []string, n int) []string {
	if n > len(values) {
		n = len(values)
	}
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(values))[:n] {
		out = append(out, values[i])
	}
	return out
}

func primaryNames(items []catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.PrimaryName)
	}
	return out
}

func alternateNames(items []catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.AlternateName != "" {
			out = append(out, it.AlternateName)
		}
	}
	return out
}

func categoriesOf(items []catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Category)
	}
	return out
}

func article(noun string) string {
	return indefinite(noun) + " " + noun
}

func indefinite(word string) string {
	if word == "" {
		return "a"
	}
	switch strings.ToLower(word[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}
