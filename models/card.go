package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// BingoCard is one printed 5x5 card. Columns are stored B/I/N/G/O as the
// card files ship them; the N column carries only 4 numbers since the center
// cell is free.
type BingoCard struct {
	ID        uint                     `gorm:"primaryKey" json:"id"`
	CardID    int                      `gorm:"uniqueIndex;not null" json:"card_id"`
	B         datatypes.JSONSlice[int] `json:"B"`
	I         datatypes.JSONSlice[int] `json:"I"`
	N         datatypes.JSONSlice[int] `json:"N"`
	G         datatypes.JSONSlice[int] `json:"G"`
	O         datatypes.JSONSlice[int] `json:"O"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// FreeCell is the value stored at the center of the grid.
const FreeCell = 0

// Grid lays the card out row-major: grid[row][col], col 0 = B. The center
// cell is FreeCell.
func (c *BingoCard) Grid() ([5][5]int, error) {
	var grid [5][5]int
	cols := [][]int{c.B, c.I, c.N, c.G, c.O}
	for col, nums := range cols {
		want := 5
		if col == 2 {
			want = 4
		}
		if len(nums) != want {
			return grid, fmt.Errorf("card %d: column %d has %d numbers, want %d", c.CardID, col, len(nums), want)
		}
		row := 0
		for _, n := range nums {
			if col == 2 && row == 2 {
				grid[row][col] = FreeCell
				row++
			}
			grid[row][col] = n
			row++
		}
	}
	return grid, nil
}

// Validate checks the column ranges (B 1-15, I 16-30, N 31-45, G 46-60,
// O 61-75) and cell uniqueness.
func (c *BingoCard) Validate() error {
	grid, err := c.Grid()
	if err != nil {
		return err
	}
	seen := make(map[int]bool, 25)
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			n := grid[row][col]
			if row == 2 && col == 2 {
				continue
			}
			lo, hi := col*15+1, col*15+15
			if n < lo || n > hi {
				return fmt.Errorf("card %d: cell (%d,%d)=%d outside %d-%d", c.CardID, row, col, n, lo, hi)
			}
			if seen[n] {
				return fmt.Errorf("card %d: duplicate number %d", c.CardID, n)
			}
			seen[n] = true
		}
	}
	return nil
}
