package builtin

import (
	"context"
	"errors"
	"math/bits"
)

const (
	size  = 9
	cells = size * size

	// allValues has bits 1 through 9 set.
	allValues uint16 = 0x3FE

	// ctxCheckInterval is how many search nodes are visited between
	// cancellation checks.
	ctxCheckInterval = 256
)

var (
	errBadPosition = errors.New("position must hold 81 digits")
	errConflict    = errors.New("position has conflicting givens")
)

// grid is a 9x9 board with per-unit bitmasks of the values in use.
type grid struct {
	cells [cells]uint8
	rows  [size]uint16
	cols  [size]uint16
	boxes [size]uint16
}

func boxOf(idx int) int {
	return (idx/size/3)*3 + (idx%size)/3
}

// parseGrid reads 81 digits, skipping spaces. 0 is an empty cell.
func parseGrid(position string) (*grid, error) {
	g := &grid{}
	n := 0
	for _, c := range position {
		if c == ' ' {
			continue
		}
		if c < '0' || c > '9' || n == cells {
			return nil, errBadPosition
		}
		g.cells[n] = uint8(c - '0')
		n++
	}
	if n != cells {
		return nil, errBadPosition
	}

	givens := g.cells
	g.cells = [cells]uint8{}
	for idx, v := range givens {
		if v == 0 {
			continue
		}
		if !g.canPlace(idx, v) {
			return nil, errConflict
		}
		g.place(idx, v)
	}
	return g, nil
}

func (g *grid) candidates(idx int) uint16 {
	if g.cells[idx] != 0 {
		return 0
	}
	return allValues &^ (g.rows[idx/size] | g.cols[idx%size] | g.boxes[boxOf(idx)])
}

func (g *grid) canPlace(idx int, v uint8) bool {
	return g.candidates(idx)&(1<<v) != 0
}

func (g *grid) place(idx int, v uint8) {
	mask := uint16(1) << v
	g.cells[idx] = v
	g.rows[idx/size] |= mask
	g.cols[idx%size] |= mask
	g.boxes[boxOf(idx)] |= mask
}

func (g *grid) clear(idx int) {
	mask := uint16(1) << g.cells[idx]
	g.cells[idx] = 0
	g.rows[idx/size] &^= mask
	g.cols[idx%size] &^= mask
	g.boxes[boxOf(idx)] &^= mask
}

func (g *grid) empty() int {
	n := 0
	for _, v := range g.cells {
		if v == 0 {
			n++
		}
	}
	return n
}

// mrvCell returns the empty cell with the fewest candidates, or -1 when the
// grid is full. A cell with no candidates is returned immediately.
func (g *grid) mrvCell() (int, uint16) {
	best, bestMask, bestCount := -1, uint16(0), size+1
	for idx := range g.cells {
		if g.cells[idx] != 0 {
			continue
		}
		mask := g.candidates(idx)
		count := bits.OnesCount16(mask)
		if count == 0 {
			return idx, 0
		}
		if count < bestCount {
			best, bestMask, bestCount = idx, mask, count
		}
	}
	return best, bestMask
}

// solver runs a depth-first search over a grid, checking ctx periodically.
type solver struct {
	ctx   context.Context
	nodes int
	err   error
}

// solve fills g in place. It returns false if the grid has no solution or
// the context ended; s.err tells the two apart.
func (s *solver) solve(g *grid) bool {
	s.nodes++
	if s.nodes%ctxCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
	}

	idx, mask := g.mrvCell()
	if idx < 0 {
		return true
	}
	for mask != 0 {
		v := uint8(bits.TrailingZeros16(mask))
		mask &^= 1 << v

		g.place(idx, v)
		if s.solve(g) {
			return true
		}
		g.clear(idx)
		if s.err != nil {
			return false
		}
	}
	return false
}

func solve(ctx context.Context, g *grid) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := &solver{ctx: ctx}
	ok := s.solve(g)
	return ok, s.err
}
