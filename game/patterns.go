package game

import "fmt"

// Cell is a card coordinate, row and column both 0-4. (2,2) is the free cell.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PatternDefinition is a named win shape. A card satisfies the pattern when
// any one of Sets is fully marked.
type PatternDefinition struct {
	Name string
	Sets [][]Cell
}

// MetaPatternDefinition is satisfied when at least Required of the named
// member patterns are independently satisfied.
type MetaPatternDefinition struct {
	Name     string
	Required int
	Members  []string
}

// Catalog holds the closed set of patterns a hall can select from.
// Validated at construction, immutable afterwards.
type Catalog struct {
	patterns map[string]PatternDefinition
	metas    map[string]MetaPatternDefinition
}

// NewCatalog validates the definitions against the 5x5 card shape and builds
// a catalog.
func NewCatalog(patterns []PatternDefinition, metas []MetaPatternDefinition) (*Catalog, error) {
	c := &Catalog{
		patterns: make(map[string]PatternDefinition, len(patterns)),
		metas:    make(map[string]MetaPatternDefinition, len(metas)),
	}
	for _, p := range patterns {
		if p.Name == "" {
			return nil, fmt.Errorf("pattern with empty name")
		}
		if len(p.Sets) == 0 {
			return nil, fmt.Errorf("pattern %q has no coordinate sets", p.Name)
		}
		for _, set := range p.Sets {
			if len(set) == 0 {
				return nil, fmt.Errorf("pattern %q has an empty coordinate set", p.Name)
			}
			for _, cell := range set {
				if cell.Row < 0 || cell.Row > 4 || cell.Col < 0 || cell.Col > 4 {
					return nil, fmt.Errorf("pattern %q: cell (%d,%d) outside the card", p.Name, cell.Row, cell.Col)
				}
			}
		}
		if _, dup := c.patterns[p.Name]; dup {
			return nil, fmt.Errorf("duplicate pattern %q", p.Name)
		}
		c.patterns[p.Name] = p
	}
	for _, m := range metas {
		if m.Name == "" {
			return nil, fmt.Errorf("meta pattern with empty name")
		}
		if m.Required < 1 || m.Required > len(m.Members) {
			return nil, fmt.Errorf("meta pattern %q: required %d of %d members", m.Name, m.Required, len(m.Members))
		}
		for _, member := range m.Members {
			if _, ok := c.patterns[member]; !ok {
				return nil, fmt.Errorf("meta pattern %q: unknown member %q", m.Name, member)
			}
		}
		if _, dup := c.patterns[m.Name]; dup {
			return nil, fmt.Errorf("meta pattern %q collides with a pattern name", m.Name)
		}
		if _, dup := c.metas[m.Name]; dup {
			return nil, fmt.Errorf("duplicate meta pattern %q", m.Name)
		}
		c.metas[m.Name] = m
	}
	return c, nil
}

// Pattern looks up a simple pattern by name.
func (c *Catalog) Pattern(name string) (PatternDefinition, bool) {
	p, ok := c.patterns[name]
	return p, ok
}

// Meta looks up a meta pattern by name.
func (c *Catalog) Meta(name string) (MetaPatternDefinition, bool) {
	m, ok := c.metas[name]
	return m, ok
}

// Has reports whether name is a known pattern or meta pattern.
func (c *Catalog) Has(name string) bool {
	if _, ok := c.patterns[name]; ok {
		return true
	}
	_, ok := c.metas[name]
	return ok
}

// Names returns all pattern and meta-pattern names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.patterns)+len(c.metas))
	for name := range c.patterns {
		names = append(names, name)
	}
	for name := range c.metas {
		names = append(names, name)
	}
	return names
}

func row(r int) []Cell {
	cells := make([]Cell, 5)
	for col := 0; col < 5; col++ {
		cells[col] = Cell{Row: r, Col: col}
	}
	return cells
}

func column(col int) []Cell {
	cells := make([]Cell, 5)
	for r := 0; r < 5; r++ {
		cells[r] = Cell{Row: r, Col: col}
	}
	return cells
}

// DefaultCatalog builds the hall's standard catalog.
func DefaultCatalog() *Catalog {
	var lines, columns [][]Cell
	for i := 0; i < 5; i++ {
		lines = append(lines, row(i))
		columns = append(columns, column(i))
	}

	var diagDown, diagUp []Cell
	for i := 0; i < 5; i++ {
		diagDown = append(diagDown, Cell{Row: i, Col: i})
		diagUp = append(diagUp, Cell{Row: i, Col: 4 - i})
	}

	var cross []Cell
	cross = append(cross, row(2)...)
	for _, cell := range column(2) {
		if cell.Row != 2 {
			cross = append(cross, cell)
		}
	}

	var full []Cell
	for r := 0; r < 5; r++ {
		full = append(full, row(r)...)
	}

	patterns := []PatternDefinition{
		{Name: "horizontal_line", Sets: lines},
		{Name: "vertical_line", Sets: columns},
		{Name: "diagonal", Sets: [][]Cell{diagDown, diagUp}},
		{Name: "four_corners", Sets: [][]Cell{{
			{Row: 0, Col: 0}, {Row: 0, Col: 4}, {Row: 4, Col: 0}, {Row: 4, Col: 4},
		}}},
		{Name: "inner_corners", Sets: [][]Cell{{
			{Row: 1, Col: 1}, {Row: 1, Col: 3}, {Row: 3, Col: 1}, {Row: 3, Col: 3},
		}}},
		{Name: "cross", Sets: [][]Cell{cross}},
		{Name: "full_house", Sets: [][]Cell{full}},
	}

	metas := []MetaPatternDefinition{
		{Name: "any_line", Required: 1, Members: []string{"horizontal_line", "vertical_line", "diagonal"}},
		{Name: "any_two_kinds", Required: 2, Members: []string{"horizontal_line", "vertical_line", "diagonal", "four_corners"}},
		{Name: "line_or_corners", Required: 1, Members: []string{"horizontal_line", "vertical_line", "diagonal", "four_corners", "inner_corners"}},
	}

	c, err := NewCatalog(patterns, metas)
	if err != nil {
		panic(err) // static data, validated here so the server fails at boot
	}
	return c
}
