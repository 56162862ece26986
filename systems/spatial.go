// Package systems provides the agent AI kernel (perception, steering, grid
// pathfinding) and the ECS systems that drive it each tick.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbor holds a nearby entity with its squared distance to the query
// origin.
type Neighbor struct {
	E      ecs.Entity
	Pos    r3.Vec
	DistSq float64
}

// SpatialGrid buckets entities by their ground-plane (X/Z) cell so proximity
// queries only visit nearby cells. Positions outside the covered area are
// clamped into the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]spatialEntry
}

type spatialEntry struct {
	e   ecs.Entity
	pos r3.Vec
}

// NewSpatialGrid creates a spatial grid covering width x depth world units.
func NewSpatialGrid(width, depth, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(depth/cellSize) + 1

	cells := make([][]spatialEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]spatialEntry, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity at pos.
func (g *SpatialGrid) Insert(e ecs.Entity, pos r3.Vec) {
	idx := g.cellIndex(pos)
	g.cells[idx] = append(g.cells[idx], spatialEntry{e: e, pos: pos})
}

// QueryRadiusInto appends every entity within radius of origin (inclusive,
// full 3-D distance) to dst, skipping exclude. Reuse dst across calls to
// avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, origin r3.Vec, radius float64, exclude ecs.Entity) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(origin)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, entry := range g.cells[row*g.cols+col] {
				if entry.e == exclude {
					continue
				}
				distSq := r3.Norm2(r3.Sub(entry.pos, origin))
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: entry.e, Pos: entry.pos, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

func (g *SpatialGrid) cellCoords(pos r3.Vec) (col, row int) {
	col = int(pos.X / g.cellSize)
	row = int(pos.Z / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

func (g *SpatialGrid) cellIndex(pos r3.Vec) int {
	col, row := g.cellCoords(pos)
	return row*g.cols + col
}
