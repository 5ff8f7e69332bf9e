package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	assert.Len(t, c.Items(), 24)
	assert.Len(t, c.Lessons(), 6)
	assert.Len(t, c.Units(), 2)
	assert.Equal(t, SupportedVersion, c.Version())
}

func TestItem_Lookup(t *testing.T) {
	c := Default()
	it, ok := c.Item("lisinopril")
	require.True(t, ok)
	assert.Equal(t, "Zestril", it.AlternateName)
	assert.Equal(t, "ACE inhibitor", it.Category)

	_, ok = c.Item("nonexistent")
	assert.False(t, ok)
}

func TestByCategory(t *testing.T) {
	c := Default()
	for _, cat := range c.Categories() {
		assert.Len(t, c.ByCategory(cat), 4, cat)
	}
	assert.Empty(t, c.ByCategory("Antifungal"))
}

func TestUnitItems(t *testing.T) {
	c := Default()
	ids, err := c.UnitItems("cardio")
	require.NoError(t, err)
	assert.Len(t, ids, 12)
	assert.Equal(t, "lisinopril", ids[0])

	_, err = c.UnitItems("nope")
	assert.Error(t, err)
}

func TestLessonAndConcept(t *testing.T) {
	c := Default()
	l, err := c.Lesson("ssris")
	require.NoError(t, err)
	assert.Len(t, l.Concepts, 2)

	cp, ok := c.Concept("ssri-discontinuation")
	require.True(t, ok)
	assert.Equal(t, []string{"paroxetine"}, cp.ItemIDs)

	assert.Equal(t, 0, c.LessonIndex("ace-inhibitors"))
	assert.Equal(t, -1, c.LessonIndex("missing"))
}

func TestNamingFamily(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Lisinopril", "-pril"},
		{"metoprolol", "-olol"},
		{"Carvedilol", "-ilol"},
		{"Atorvastatin", "-statin"},
		{"Esomeprazole", "-prazole"},
		{"Fluoxetine", "-oxetine"},
		{"Warfarin", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NamingFamily(tt.name); got != tt.want {
			t.Errorf("NamingFamily(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSimilar_ExcludesSelf(t *testing.T) {
	c := Default()
	it, _ := c.Item("atenolol")
	sim := c.Similar(it)
	assert.Len(t, sim, 3)
	for _, s := range sim {
		assert.NotEqual(t, "atenolol", s.ID)
		assert.Equal(t, "Beta blocker", s.Category)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{`},
		{"bad version", `{"schema_version":"one","items":[{"id":"a","primary_name":"A","category":"x"}]}`},
		{"major mismatch", `{"schema_version":"v2.0.0","items":[{"id":"a","primary_name":"A","category":"x"}]}`},
		{"no items", `{"schema_version":"v1.0.0"}`},
		{"duplicate item", `{"schema_version":"v1.0.0","items":[{"id":"a","primary_name":"A","category":"x"},{"id":"a","primary_name":"A","category":"x"}]}`},
		{"dangling lesson item", `{"schema_version":"v1.0.0","items":[{"id":"a","primary_name":"A","category":"x"}],"lessons":[{"id":"l","item_ids":["b"]}]}`},
		{"dangling unit lesson", `{"schema_version":"v1.0.0","items":[{"id":"a","primary_name":"A","category":"x"}],"units":[{"id":"u","lesson_ids":["l"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestParse_MinorVersionAccepted(t *testing.T) {
	c, err := Parse([]byte(`{"schema_version":"v1.9.3","items":[{"id":"a","primary_name":"A","category":"x"}]}`))
	require.NoError(t, err)
	assert.Len(t, c.Items(), 1)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Items())

	path := filepath.Join(t.TempDir(), "cat.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":"v1.0.0","title":"Mini","items":[{"id":"a","primary_name":"A","category":"x"}]}`), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Mini", c.Title())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
