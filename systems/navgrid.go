package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid construction errors.
var (
	ErrEmptyGrid      = errors.New("grid has zero size")
	ErrOutOfBounds    = errors.New("cell outside grid")
	ErrBadProbability = errors.New("obstacle probability outside [0,1]")
	ErrRaggedRows     = errors.New("grid rows differ in length")
	ErrGridTooLarge   = errors.New("grid has more cells than parent indices can address")
)

// NoiseScale is the sample spacing used by BuildNoiseGrid. Smaller values
// give larger wall blobs.
const NoiseScale = 0.18

// Point addresses a grid cell.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cell is one square of the walkability grid.
type Cell struct {
	X, Y     int
	Walkable bool
}

// Point returns the cell coordinates.
func (c Cell) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

// Grid is a fixed-size walkability grid. Walkability does not change after
// construction; only the per-search parent bookkeeping does.
type Grid struct {
	width  int
	height int
	cells  []Cell  // row-major, y*width+x
	parent []int32 // BFS parent index per cell, -1 = not reached
}

// NewGrid creates a fully walkable grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, width, height)
	}
	// Parent links are int32.
	if width > math.MaxInt32/height {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridTooLarge, width, height)
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		parent: make([]int32, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{X: x, Y: y, Walkable: true}
		}
	}
	g.resetParents()
	return g, nil
}

// BuildGrid creates a grid where each cell is independently blocked with
// obstacleProbability. Start and goal are always walkable. A nil rng uses a
// fixed seed.
func BuildGrid(width, height int, obstacleProbability float64, start, goal Point, rng *rand.Rand) (*Grid, error) {
	if obstacleProbability < 0 || obstacleProbability > 1 {
		return nil, fmt.Errorf("%w: %g", ErrBadProbability, obstacleProbability)
	}
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if err := g.checkEndpoints(start, goal); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	for i := range g.cells {
		g.cells[i].Walkable = rng.Float64() >= obstacleProbability
	}
	g.setWalkable(start, true)
	g.setWalkable(goal, true)
	return g, nil
}

// BuildNoiseGrid creates a grid with clustered walls: a cell is blocked when
// normalized OpenSimplex noise at its coordinates falls below threshold.
// Start and goal are always walkable.
func BuildNoiseGrid(width, height int, threshold float64, start, goal Point, seed int64) (*Grid, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: %g", ErrBadProbability, threshold)
	}
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if err := g.checkEndpoints(start, goal); err != nil {
		return nil, err
	}

	noise := opensimplex.NewNormalized(seed)
	for i := range g.cells {
		c := &g.cells[i]
		v := noise.Eval2(float64(c.X)*NoiseScale, float64(c.Y)*NoiseScale)
		c.Walkable = v >= threshold
	}
	g.setWalkable(start, true)
	g.setWalkable(goal, true)
	return g, nil
}

// ParseGrid builds a grid from text rows, '#' blocked and anything else
// walkable. Row 0 is y=0.
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyGrid
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRows, y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			g.cells[y*g.width+x].Walkable = row[x] != '#'
		}
	}
	return g, nil
}

func (g *Grid) checkEndpoints(start, goal Point) error {
	if !g.InBounds(start) {
		return fmt.Errorf("%w: start %v in %dx%d", ErrOutOfBounds, start, g.width, g.height)
	}
	if !g.InBounds(goal) {
		return fmt.Errorf("%w: goal %v in %dx%d", ErrOutOfBounds, goal, g.width, g.height)
	}
	return nil
}

func (g *Grid) setWalkable(p Point, walkable bool) {
	g.cells[g.index(p)].Walkable = walkable
}

func (g *Grid) resetParents() {
	for i := range g.parent {
		g.parent[i] = -1
	}
}

func (g *Grid) index(p Point) int {
	return p.Y*g.width + p.X
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside [0,width) x [0,height).
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Cell returns the cell at p.
func (g *Grid) Cell(p Point) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[g.index(p)], true
}

// IsWalkable returns false for blocked or out-of-bounds cells.
func (g *Grid) IsWalkable(p Point) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.cells[g.index(p)].Walkable
}

// WalkableCount returns the number of walkable cells.
func (g *Grid) WalkableCount() int {
	n := 0
	for _, c := range g.cells {
		if c.Walkable {
			n++
		}
	}
	return n
}

// cellSizeOrUnit treats a non-positive cell size as 1.
func cellSizeOrUnit(cellSize float64) float64 {
	if cellSize <= 0 {
		return 1
	}
	return cellSize
}

// GridToWorld converts a cell to the world position of its centre on the
// ground plane (grid y maps to world Z). A non-positive cellSize counts as 1.
func GridToWorld(p Point, cellSize float64) r3.Vec {
	cellSize = cellSizeOrUnit(cellSize)
	return r3.Vec{
		X: (float64(p.X) + 0.5) * cellSize,
		Z: (float64(p.Y) + 0.5) * cellSize,
	}
}

// WorldToGrid converts a ground-plane world position to the cell containing
// it. Positions left of or above the origin map to negative cells. A
// non-positive cellSize counts as 1.
func WorldToGrid(v r3.Vec, cellSize float64) Point {
	cellSize = cellSizeOrUnit(cellSize)
	return Point{
		X: int(math.Floor(v.X / cellSize)),
		Y: int(math.Floor(v.Z / cellSize)),
	}
}

// Render draws the grid as text, '.' walkable, '#' blocked, '*' on path.
func (g *Grid) Render(path Path) string {
	onPath := make(map[int]bool, len(path))
	for _, c := range path {
		onPath[g.index(c.Point())] = true
	}

	var b strings.Builder
	b.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := y*g.width + x
			switch {
			case onPath[i]:
				b.WriteByte('*')
			case g.cells[i].Walkable:
				b.WriteByte('.')
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Grid) String() string {
	return g.Render(nil)
}
