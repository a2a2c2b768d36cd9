package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name     string
		patterns []PatternDefinition
		metas    []MetaPatternDefinition
	}{
		{
			name:     "cell outside the card",
			patterns: []PatternDefinition{{Name: "bad", Sets: [][]Cell{{{Row: 5, Col: 0}}}}},
		},
		{
			name:     "pattern without sets",
			patterns: []PatternDefinition{{Name: "empty"}},
		},
		{
			name: "duplicate pattern name",
			patterns: []PatternDefinition{
				{Name: "dup", Sets: [][]Cell{{{Row: 0, Col: 0}}}},
				{Name: "dup", Sets: [][]Cell{{{Row: 1, Col: 1}}}},
			},
		},
		{
			name:     "meta with unknown member",
			patterns: []PatternDefinition{{Name: "a", Sets: [][]Cell{{{Row: 0, Col: 0}}}}},
			metas:    []MetaPatternDefinition{{Name: "m", Required: 1, Members: []string{"missing"}}},
		},
		{
			name:     "meta requiring more than its members",
			patterns: []PatternDefinition{{Name: "a", Sets: [][]Cell{{{Row: 0, Col: 0}}}}},
			metas:    []MetaPatternDefinition{{Name: "m", Required: 2, Members: []string{"a"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.patterns, tt.metas)
			assert.Error(t, err)
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	for _, name := range []string{
		"horizontal_line", "vertical_line", "diagonal", "four_corners",
		"inner_corners", "cross", "full_house",
		"any_line", "any_two_kinds", "line_or_corners",
	} {
		assert.True(t, cat.Has(name), "missing %s", name)
	}

	p, ok := cat.Pattern("horizontal_line")
	require.True(t, ok)
	assert.Len(t, p.Sets, 5, "one set per row")

	m, ok := cat.Meta("any_line")
	require.True(t, ok)
	assert.Equal(t, 1, m.Required)
}
