package systems

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// neighborOffsets is the fixed 4-connected expansion order: +x, +y, -x, -y.
// It decides which of several equally short paths Search finds.
var neighborOffsets = [4]Point{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
}

// Path is an ordered run of cells from start to goal inclusive.
type Path []Cell

// Len returns the number of cells in the path.
func (p Path) Len() int {
	return len(p)
}

// Steps returns the number of moves, one less than the cell count.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Waypoints converts the path to world-space cell centres.
func (p Path) Waypoints(cellSize float64) []r3.Vec {
	out := make([]r3.Vec, len(p))
	for i, c := range p {
		out[i] = GridToWorld(c.Point(), cellSize)
	}
	return out
}

// Search runs a breadth-first search from start to goal over walkable
// 4-connected cells. Cells are marked visited when enqueued, so each cell
// enters the frontier at most once. The search stops as soon as goal is
// dequeued. It reports false when the frontier empties first or when start
// or goal is blocked; an out-of-bounds endpoint is an error.
//
// Parent pointers from the search are kept on the grid for ReconstructPath
// until the next Search.
func (g *Grid) Search(start, goal Point) (bool, error) {
	if err := g.checkEndpoints(start, goal); err != nil {
		return false, err
	}
	g.resetParents()

	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		return false, nil
	}

	startIdx := g.index(start)
	goalIdx := int32(g.index(goal))

	// The root is its own parent.
	g.parent[startIdx] = int32(startIdx)

	queue := make([]int32, 0, g.width+g.height)
	queue = append(queue, int32(startIdx))
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur == goalIdx {
			return true, nil
		}

		c := g.cells[cur]
		for _, off := range neighborOffsets {
			n := Point{X: c.X + off.X, Y: c.Y + off.Y}
			if !g.IsWalkable(n) {
				continue
			}
			ni := g.index(n)
			if g.parent[ni] != -1 {
				continue
			}
			g.parent[ni] = cur
			queue = append(queue, int32(ni))
		}
	}
	return false, nil
}

// Reached reports whether the last Search assigned p a parent.
func (g *Grid) Reached(p Point) bool {
	return g.InBounds(p) && g.parent[g.index(p)] != -1
}

// ReconstructPath walks parent pointers from goal back to the self-parented
// start and returns the cells in start-to-goal order. It returns nil when
// the last Search did not reach goal.
func (g *Grid) ReconstructPath(goal Point) Path {
	if !g.Reached(goal) {
		return nil
	}

	var rev Path
	idx := int32(g.index(goal))
	for {
		rev = append(rev, g.cells[idx])
		p := g.parent[idx]
		if p == idx {
			break
		}
		idx = p
	}

	path := make(Path, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// FindPath searches and reconstructs in one call. A nil path with a nil
// error means goal is unreachable.
func FindPath(g *Grid, start, goal Point) (Path, error) {
	found, err := g.Search(start, goal)
	if err != nil {
		return nil, fmt.Errorf("searching %v -> %v: %w", start, goal, err)
	}
	if !found {
		slog.Debug("no path", "start", start.String(), "goal", goal.String())
		return nil, nil
	}
	path := g.ReconstructPath(goal)
	slog.Debug("path found", "start", start.String(), "goal", goal.String(), "cells", path.Len())
	return path, nil
}
