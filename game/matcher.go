package game

import "fmt"

// Combinator joins the primary and secondary pattern selections.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

const freeRow, freeCol = 2, 2

// markedGrid precomputes which cells of the card are marked given the drawn
// numbers. The center cell is always marked.
func markedGrid(grid [5][5]int, drawn []int) [5][5]bool {
	drawnSet := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		drawnSet[n] = true
	}
	var marked [5][5]bool
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			marked[r][c] = (r == freeRow && c == freeCol) || drawnSet[grid[r][c]]
		}
	}
	return marked
}

func setMarked(marked [5][5]bool, set []Cell) bool {
	for _, cell := range set {
		if !marked[cell.Row][cell.Col] {
			return false
		}
	}
	return true
}

func patternSatisfied(marked [5][5]bool, p PatternDefinition) bool {
	for _, set := range p.Sets {
		if setMarked(marked, set) {
			return true
		}
	}
	return false
}

// Evaluate returns the names of all patterns and meta patterns the card
// satisfies under the drawn numbers. Pure: only the set of drawn numbers
// matters, not the order they were drawn in.
func Evaluate(grid [5][5]int, drawn []int, cat *Catalog) map[string]bool {
	marked := markedGrid(grid, drawn)

	satisfied := make(map[string]bool)
	for name, p := range cat.patterns {
		if patternSatisfied(marked, p) {
			satisfied[name] = true
		}
	}
	for name, m := range cat.metas {
		count := 0
		for _, member := range m.Members {
			if satisfied[member] {
				count++
			}
		}
		if count >= m.Required {
			satisfied[name] = true
		}
	}
	return satisfied
}

// IsWinner decides win eligibility for a card under the selected patterns.
// An empty secondary means only the primary counts. Returns the full
// satisfied set alongside the decision so callers can display progress.
func IsWinner(grid [5][5]int, drawn []int, primary, secondary string, comb Combinator, cat *Catalog) (bool, map[string]bool, error) {
	if !cat.Has(primary) {
		return false, nil, fmt.Errorf("unknown pattern %q", primary)
	}
	if secondary != "" && !cat.Has(secondary) {
		return false, nil, fmt.Errorf("unknown pattern %q", secondary)
	}

	satisfied := Evaluate(grid, drawn, cat)
	if secondary == "" {
		return satisfied[primary], satisfied, nil
	}

	switch comb {
	case CombinatorAnd:
		return satisfied[primary] && satisfied[secondary], satisfied, nil
	case CombinatorOr:
		return satisfied[primary] || satisfied[secondary], satisfied, nil
	default:
		return false, nil, fmt.Errorf("unknown combinator %q", comb)
	}
}
