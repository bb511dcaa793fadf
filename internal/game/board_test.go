package game

import "testing"

func place(b *Board, sym Symbol, cells ...[2]int) {
	for _, c := range cells {
		b.Place(c[0], c[1], sym)
	}
}

func TestIsEmpty(t *testing.T) {
	var b Board
	if !b.IsEmpty(0, 0) || !b.IsEmpty(14, 14) {
		t.Error("fresh board should be empty")
	}
	if b.IsEmpty(-1, 0) || b.IsEmpty(0, 15) {
		t.Error("out-of-range cells must not be empty")
	}
	b.Place(7, 7, SymbolX)
	if b.IsEmpty(7, 7) {
		t.Error("placed cell should not be empty")
	}
}

func TestFindWinLineDiagonal(t *testing.T) {
	var b Board
	place(&b, SymbolX, [2]int{5, 5}, [2]int{6, 6}, [2]int{7, 7}, [2]int{8, 8}, [2]int{9, 9})
	place(&b, SymbolO, [2]int{0, 0}, [2]int{1, 1}, [2]int{2, 2}, [2]int{3, 3})

	line := b.FindWinLine(9, 9, SymbolX)
	if len(line) != 5 {
		t.Fatalf("want 5 cells, got %v", line)
	}
	want := [][2]int{{5, 5}, {6, 6}, {7, 7}, {8, 8}, {9, 9}}
	for i, c := range want {
		if line[i] != c {
			t.Errorf("cell %d = %v, want %v", i, line[i], c)
		}
	}

	if got := b.FindWinLine(3, 3, SymbolO); got != nil {
		t.Errorf("four in a row is not a win, got %v", got)
	}
}

func TestFindWinLineDirections(t *testing.T) {
	cases := []struct {
		name  string
		cells [][2]int
		last  [2]int
	}{
		{"horizontal", [][2]int{{2, 7}, {3, 7}, {4, 7}, {5, 7}, {6, 7}}, [2]int{4, 7}},
		{"vertical", [][2]int{{7, 2}, {7, 3}, {7, 4}, {7, 5}, {7, 6}}, [2]int{7, 6}},
		{"anti-diagonal", [][2]int{{4, 10}, {5, 9}, {6, 8}, {7, 7}, {8, 6}}, [2]int{6, 8}},
	}
	for _, c := range cases {
		var b Board
		place(&b, SymbolO, c.cells...)
		line := b.FindWinLine(c.last[0], c.last[1], SymbolO)
		if len(line) != 5 {
			t.Errorf("%s: want 5 cells, got %v", c.name, line)
		}
	}
}

func TestFindWinLineOverline(t *testing.T) {
	var b Board
	place(&b, SymbolX, [2]int{2, 2}, [2]int{3, 3}, [2]int{4, 4}, [2]int{5, 5}, [2]int{6, 6}, [2]int{7, 7})
	line := b.FindWinLine(4, 4, SymbolX)
	if len(line) != 6 {
		t.Errorf("overline should return the whole run, got %d cells", len(line))
	}
}

func TestFindWinLineNoWin(t *testing.T) {
	var b Board
	b.Place(7, 7, SymbolX)
	if got := b.FindWinLine(7, 7, SymbolX); got != nil {
		t.Errorf("single stone is not a win, got %v", got)
	}
}

func TestIsFull(t *testing.T) {
	var b Board
	if b.IsFull() {
		t.Error("empty board reported full")
	}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			b.Place(x, y, SymbolX)
		}
	}
	if !b.IsFull() {
		t.Error("filled board reported not full")
	}
}

func TestRows(t *testing.T) {
	var b Board
	b.Place(0, 0, SymbolX)
	b.Place(14, 0, SymbolO)
	rows := b.Rows()
	if len(rows) != BoardSize {
		t.Fatalf("want %d rows, got %d", BoardSize, len(rows))
	}
	if rows[0] != "X.............O" {
		t.Errorf("row 0 = %q", rows[0])
	}
	if rows[7] != "..............." {
		t.Errorf("row 7 = %q", rows[7])
	}
}

func TestCellLabel(t *testing.T) {
	cases := []struct {
		x, y  int
		label string
	}{
		{0, 4, "A5"},
		{0, 0, "A1"},
		{14, 14, "O15"},
		{7, 7, "H8"},
	}
	for _, c := range cases {
		if got := CellLabel(c.x, c.y); got != c.label {
			t.Errorf("CellLabel(%d,%d) = %q, want %q", c.x, c.y, got, c.label)
		}
		x, y, err := ParseCellLabel(c.label)
		if err != nil || x != c.x || y != c.y {
			t.Errorf("ParseCellLabel(%q) = (%d,%d,%v), want (%d,%d)", c.label, x, y, err, c.x, c.y)
		}
	}

	for _, bad := range []string{"", "A", "Z5", "A16", "A0"} {
		if _, _, err := ParseCellLabel(bad); err == nil {
			t.Errorf("ParseCellLabel(%q) should fail", bad)
		}
	}
}
