package game

import (
	"fmt"
	"strings"
)

// Board is the 15x15 grid. Cells hold 0 (empty), 'X' or 'O', indexed
// board[y][x] with x the column and y the row.
type Board [BoardSize][BoardSize]byte

// winDirections are the four axes checked for five in a row.
var winDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// InRange reports whether (x,y) is on the board.
func InRange(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// IsEmpty reports whether (x,y) is on the board and unoccupied.
func (b *Board) IsEmpty(x, y int) bool {
	return InRange(x, y) && b[y][x] == 0
}

// Place writes sym at (x,y). The caller validates the cell first.
func (b *Board) Place(x, y int, sym Symbol) {
	b[y][x] = sym[0]
}

// At returns the symbol at (x,y), or "" for an empty cell.
func (b *Board) At(x, y int) Symbol {
	if !InRange(x, y) || b[y][x] == 0 {
		return ""
	}
	return Symbol(b[y][x])
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b[y][x] == 0 {
				return false
			}
		}
	}
	return true
}

// FindWinLine returns the longest run of sym through (x,y) as ordered
// cells when that run reaches WinLength, otherwise nil. When several
// directions qualify, whichever is longest wins; callers must not
// depend on which.
func (b *Board) FindWinLine(x, y int, sym Symbol) [][2]int {
	c := sym[0]
	var best [][2]int
	for _, dir := range winDirections {
		dx, dy := dir[0], dir[1]

		// Walk back to the start of the run, then forward through it.
		sx, sy := x, y
		for InRange(sx-dx, sy-dy) && b[sy-dy][sx-dx] == c {
			sx, sy = sx-dx, sy-dy
		}
		var run [][2]int
		for cx, cy := sx, sy; InRange(cx, cy) && b[cy][cx] == c; cx, cy = cx+dx, cy+dy {
			run = append(run, [2]int{cx, cy})
		}
		if len(run) > len(best) {
			best = run
		}
	}
	if len(best) >= WinLength {
		return best
	}
	return nil
}

// Rows renders the board as 15 strings of '.', 'X' and 'O', row 0 first.
func (b *Board) Rows() []string {
	rows := make([]string, BoardSize)
	for y := 0; y < BoardSize; y++ {
		var sb strings.Builder
		for x := 0; x < BoardSize; x++ {
			if b[y][x] == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(b[y][x])
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// CellLabel formats a cell as column letter plus 1-based row, e.g.
// "A5" for (0,4).
func CellLabel(x, y int) string {
	return fmt.Sprintf("%c%d", 'A'+x, y+1)
}

// ParseCellLabel is the inverse of CellLabel.
func ParseCellLabel(label string) (x, y int, err error) {
	if len(label) < 2 {
		return 0, 0, fmt.Errorf("bad cell label %q", label)
	}
	x = int(label[0] - 'A')
	var row int
	if _, err := fmt.Sscanf(label[1:], "%d", &row); err != nil {
		return 0, 0, fmt.Errorf("bad cell label %q", label)
	}
	y = row - 1
	if !InRange(x, y) {
		return 0, 0, fmt.Errorf("cell label %q out of range", label)
	}
	return x, y, nil
}
