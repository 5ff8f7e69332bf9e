package quiz

// Phase tags where in a session a question is asked.
type Phase string

const (
	PhaseIntro   Phase = "intro"
	PhaseQuiz    Phase = "quiz"
	PhaseReview  Phase = "review"
	PhaseMastery Phase = "mastery"
)

// Kind is a question archetype. Several kinds share one variant shape.
type Kind string

const (
	KindBrandToGeneric Kind = "brand-to-generic"
	KindGenericToBrand Kind = "generic-to-brand"
	KindClassOf        Kind = "class-of"
	KindUseOf          Kind = "use-of"
	KindDrugForUse     Kind = "drug-for-use"
	KindEffectOf       Kind = "effect-of"
	KindDrugForEffect  Kind = "drug-for-effect"
	KindClozeFact      Kind = "cloze-fact"
	KindClozeDosing    Kind = "cloze-dosing"
	KindNotAUse        Kind = "not-a-use"
	KindNotAnEffect    Kind = "not-an-effect"
	KindSelectUses     Kind = "select-uses"
	KindSelectEffects  Kind = "select-effects"
	KindTrueFalseClass Kind = "true-false-class"
	KindMatchNames     Kind = "match-names"
	KindSameClass      Kind = "same-class"
	KindPearl          Kind = "pearl"
)

// AllKinds returns every archetype in round-robin order.
func AllKinds() []Kind {
	return []Kind{
		KindBrandToGeneric,
		KindClassOf,
		KindUseOf,
		KindNotAUse,
		KindGenericToBrand,
		KindEffectOf,
		KindSelectUses,
		KindTrueFalseClass,
		KindDrugForUse,
		KindClozeFact,
		KindNotAnEffect,
		KindMatchNames,
		KindDrugForEffect,
		KindSameClass,
		KindSelectEffects,
		KindClozeDosing,
		KindPearl,
	}
}

// FastKinds are the archetypes answerable in a couple of seconds.
func FastKinds() []Kind {
	return []Kind{
		KindTrueFalseClass,
		KindBrandToGeneric,
		KindGenericToBrand,
		KindClassOf,
	}
}

// ParseKind returns the Kind for s, or false if s names no archetype.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Variant names the shape of a question.
type Variant string

const (
	VariantRecall          Variant = "recall"
	VariantReverseRecall   Variant = "reverse-recall"
	VariantCloze           Variant = "cloze"
	VariantNegation        Variant = "negation"
	VariantMultiSelect     Variant = "multi-select"
	VariantTrueFalse       Variant = "true-false"
	VariantMatching        Variant = "matching"
	VariantClassComparison Variant = "class-comparison"
	VariantPearl           Variant = "pearl"
)

// Base holds the fields every question carries.
type Base struct {
	ID          string
	Kind        Kind
	Variant     Variant
	ItemID      string
	Phase       Phase
	Prompt      string
	Explanation string

	// ConceptID is set on intro teaching cards.
	ConceptID string
}

// Header returns the common fields of a question.
func (b Base) Header() Base { return b }

func (Base) question() {}

// Question is implemented by each variant struct below.
type Question interface {
	Header() Base
	question()
}

// Recall asks for an attribute of a named drug.
type Recall struct {
	Base
	Options []string
	Answer  string
}

// ReverseRecall names an attribute and asks for the drug.
type ReverseRecall struct {
	Base
	Options []string
	Answer  string
}

// Cloze is a sentence with the drug name blanked out.
type Cloze struct {
	Base
	Text    string
	Options []string
	Answer  string
}

// Negation asks which option does NOT belong to the drug.
type Negation struct {
	Base
	Options []string
	Answer  string
}

// MultiSelect asks for every option that applies.
type MultiSelect struct {
	Base
	Options []string
	Answers []string
}

// TrueFalse is a single statement judged true or false.
type TrueFalse struct {
	Base
	Statement string
	Truth     bool
}

// Pair is one left/right match.
type Pair struct {
	Left  string
	Right string
}

// Matching asks the learner to pair each left value with its right value.
// Rights holds the right-hand values in display order.
type Matching struct {
	Base
	Pairs  []Pair
	Rights []string
}

// ClassComparison asks which drug shares a class with the named one.
type ClassComparison struct {
	Base
	Options []string
	Answer  string
}

// Pearl is a clinical-pearl card. Intro cards carry Title and Body.
type Pearl struct {
	Base
	Title   string
	Body    string
	Options []string
	Answer  string
}

// Response is a learner's answer. Which field is read depends on the variant:
// Choice for single-choice variants and true/false, Selected for
// multi-select, Pairs (left to right) for matching.
type Response struct {
	Choice   string
	Selected []string
	Pairs    map[string]string
}
