package catalog

// Item is one drug in the catalog. Items are immutable once loaded.
type Item struct {
	ID            string   `json:"id"`
	PrimaryName   string   `json:"primary_name"`
	AlternateName string   `json:"alternate_name"`
	Category      string   `json:"category"`
	Uses          []string `json:"uses"`
	Effects       []string `json:"effects"`
	DosingNote    string   `json:"dosing_note"`
	Fact          string   `json:"fact"`
}

// Concept is a teaching card attached to a lesson. ItemIDs names the
// items the card is illustrated with; the first one is the anchor.
type Concept struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	ItemIDs []string `json:"item_ids"`
}

// Lesson groups a handful of items with the concepts taught before them.
type Lesson struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	UnitID   string    `json:"unit_id"`
	ItemIDs  []string  `json:"item_ids"`
	Concepts []Concept `json:"concepts"`
}

// Unit is an ordered run of lessons examined together in mastery mode.
type Unit struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	LessonIDs []string `json:"lesson_ids"`
}

// document is the on-disk catalog shape.
type document struct {
	SchemaVersion string   `json:"schema_version"`
	Title         string   `json:"title"`
	Items         []Item   `json:"items"`
	Lessons       []Lesson `json:"lessons"`
	Units         []Unit   `json:"units"`
}
