package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Catalog is the read-only content set with precomputed indices.
type Catalog struct {
	title       string
	version     string
	items       []Item
	byID        map[string]*Item
	byCategory  map[string][]Item
	categories  []string
	lessons     []Lesson
	lessonByID  map[string]*Lesson
	units       []Unit
	unitByID    map[string]*Unit
	conceptByID map[string]*Concept
}

// build constructs the catalog indices. Input is assumed validated.
func build(doc document) *Catalog {
	c := &Catalog{
		title:       doc.Title,
		version:     doc.SchemaVersion,
		items:       doc.Items,
		byID:        make(map[string]*Item, len(doc.Items)),
		byCategory:  make(map[string][]Item),
		lessons:     doc.Lessons,
		lessonByID:  make(map[string]*Lesson, len(doc.Lessons)),
		units:       doc.Units,
		unitByID:    make(map[string]*Unit, len(doc.Units)),
		conceptByID: make(map[string]*Concept),
	}

	for i := range c.items {
		it := &c.items[i]
		c.byID[it.ID] = it
		if _, seen := c.byCategory[it.Category]; !seen {
			c.categories = append(c.categories, it.Category)
		}
		c.byCategory[it.Category] = append(c.byCategory[it.Category], *it)
	}
	sort.Strings(c.categories)

	for i := range c.lessons {
		l := &c.lessons[i]
		c.lessonByID[l.ID] = l
		for j := range l.Concepts {
			c.conceptByID[l.Concepts[j].ID] = &l.Concepts[j]
		}
	}
	for i := range c.units {
		c.unitByID[c.units[i].ID] = &c.units[i]
	}
	return c
}

// Title returns the catalog's display title.
func (c *Catalog) Title() string { return c.title }

// Version returns the declared schema version.
func (c *Catalog) Version() string { return c.version }

// Item returns an item by ID.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// ItemsByID resolves ids, silently skipping unknown ones.
func (c *Catalog) ItemsByID(ids []string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := c.byID[id]; ok {
			out = append(out, *it)
		}
	}
	return out
}

// ByCategory returns the items sharing a category label.
func (c *Catalog) ByCategory(category string) []Item {
	return slices.Clone(c.byCategory[category])
}

// Categories returns all category labels, sorted.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// Lessons returns all lessons in catalog order.
func (c *Catalog) Lessons() []Lesson {
	return slices.Clone(c.lessons)
}

// Lesson returns a lesson by ID, or an error if not found.
func (c *Catalog) Lesson(id string) (Lesson, error) {
	l, ok := c.lessonByID[id]
	if !ok {
		return Lesson{}, fmt.Errorf("lesson not found: %q", id)
	}
	return *l, nil
}

// Concept returns a teaching concept by ID.
func (c *Catalog) Concept(id string) (Concept, bool) {
	cp, ok := c.conceptByID[id]
	if !ok {
		return Concept{}, false
	}
	return *cp, true
}

// Units returns all units in catalog order.
func (c *Catalog) Units() []Unit {
	return slices.Clone(c.units)
}

// Unit returns a unit by ID, or an error if not found.
func (c *Catalog) Unit(id string) (Unit, error) {
	u, ok := c.unitByID[id]
	if !ok {
		return Unit{}, fmt.Errorf("unit not found: %q", id)
	}
	return *u, nil
}

// UnitItems returns the item IDs of every lesson in a unit, deduplicated,
// in lesson order.
func (c *Catalog) UnitItems(id string) ([]string, error) {
	u, err := c.Unit(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, lid := range u.LessonIDs {
		l := c.lessonByID[lid]
		if l == nil {
			continue
		}
		for _, iid := range l.ItemIDs {
			if !seen[iid] {
				seen[iid] = true
				out = append(out, iid)
			}
		}
	}
	return out, nil
}

// LessonIndex returns the position of a lesson in catalog order, or -1.
func (c *Catalog) LessonIndex(id string) int {
	for i, l := range c.lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Similar returns items that share a category or naming family with the
// given item, excluding the item itself.
func (c *Catalog) Similar(it Item) []Item {
	family := NamingFamily(it.PrimaryName)
	var out []Item
	for _, other := range c.items {
		if other.ID == it.ID {
			continue
		}
		if other.Category == it.Category || (family != "" && NamingFamily(other.PrimaryName) == family) {
			out = append(out, other)
		}
	}
	return out
}

// familyStems are well-known generic-name stems, longest first so the
// most specific match wins.
var familyStems = []string{
	"oxetine", "prazole", "statin", "gatran", "dipine", "sartan",
	"xaban", "olol", "ilol", "pril", "pram", "tidine", "mab", "nib",
}

// NamingFamily returns the generic-name stem a drug name belongs to
// (e.g. "-pril" for lisinopril), or "" when the name carries no known stem.
func NamingFamily(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, stem := range familyStems {
		if strings.HasSuffix(n, stem) {
			return "-" + stem
		}
	}
	return ""
}
