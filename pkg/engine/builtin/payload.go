package builtin

import (
	"strconv"

	"github.com/beevik/etree"
)

// Payload element names.
const (
	elemMoves    = "moves"
	elemSolution = "solution"
	elemRecord   = "m"
	elemCell     = "c"
	elemValue    = "v"
)

// move is one cell assignment.
type move struct {
	cell  int
	value uint8
}

// movesOf lists every candidate value of every empty cell, in cell order.
func movesOf(g *grid) []move {
	var moves []move
	for idx := range g.cells {
		mask := g.candidates(idx)
		for v := uint8(1); v <= size; v++ {
			if mask&(1<<v) != 0 {
				moves = append(moves, move{cell: idx, value: v})
			}
		}
	}
	return moves
}

// solutionOf lists every cell of a solved grid.
func solutionOf(g *grid) []move {
	moves := make([]move, 0, cells)
	for idx, v := range g.cells {
		moves = append(moves, move{cell: idx, value: v})
	}
	return moves
}

// encodePayload renders moves as <root><m><c>IDX</c><v>VAL</v></m>...</root>.
func encodePayload(root string, moves []move) (string, error) {
	doc := etree.NewDocument()
	r := doc.CreateElement(root)
	for _, m := range moves {
		rec := r.CreateElement(elemRecord)
		rec.CreateElement(elemCell).SetText(strconv.Itoa(m.cell))
		rec.CreateElement(elemValue).SetText(strconv.Itoa(int(m.value)))
	}
	return doc.WriteToString()
}
