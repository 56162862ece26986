package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func pathPoints(p Path) []Point {
	out := make([]Point, len(p))
	for i, c := range p {
		out[i] = c.Point()
	}
	return out
}

func samePoints(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkPath verifies the path runs start to goal over adjacent walkable cells.
func checkPath(t *testing.T, g *Grid, p Path, start, goal Point) {
	t.Helper()
	if len(p) == 0 {
		t.Fatal("empty path")
	}
	if p[0].Point() != start || p[len(p)-1].Point() != goal {
		t.Fatalf("path runs %v -> %v, want %v -> %v", p[0].Point(), p[len(p)-1].Point(), start, goal)
	}
	for i, c := range p {
		if !g.IsWalkable(c.Point()) {
			t.Errorf("cell %d %v is blocked", i, c.Point())
		}
		if i == 0 {
			continue
		}
		dx := c.X - p[i-1].X
		dy := c.Y - p[i-1].Y
		if dx*dx+dy*dy != 1 {
			t.Errorf("cells %d and %d are not 4-adjacent: %v %v", i-1, i, p[i-1].Point(), c.Point())
		}
	}
}

func TestFindPathOpenGridOrder(t *testing.T) {
	g, err := NewGrid(3, 3)
	if err != nil {
		t.Fatal(err)
	}

	path, err := FindPath(g, Point{0, 0}, Point{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}}
	if got := pathPoints(path); !samePoints(got, want) {
		t.Errorf("path = %v, want %v", got, want)
	}
	if path.Steps() != 4 {
		t.Errorf("Steps = %d, want 4", path.Steps())
	}
}

func TestFindPathOpenGridLength(t *testing.T) {
	g, err := NewGrid(5, 5)
	if err != nil {
		t.Fatal(err)
	}

	start, goal := Point{0, 0}, Point{4, 4}
	path, err := FindPath(g, start, goal)
	if err != nil {
		t.Fatal(err)
	}
	checkPath(t, g, path, start, goal)
	if path.Len() != 9 {
		t.Errorf("Len = %d, want 9", path.Len())
	}
}

func TestFindPathAroundWall(t *testing.T) {
	g, err := ParseGrid([]string{
		".#.",
		".#.",
		"...",
	})
	if err != nil {
		t.Fatal(err)
	}

	start, goal := Point{0, 0}, Point{2, 0}
	path, err := FindPath(g, start, goal)
	if err != nil {
		t.Fatal(err)
	}
	checkPath(t, g, path, start, goal)
	if path.Len() != 7 {
		t.Errorf("Len = %d, want 7", path.Len())
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g, err := ParseGrid([]string{
		".#.",
		".#.",
		".#.",
	})
	if err != nil {
		t.Fatal(err)
	}

	path, err := FindPath(g, Point{0, 0}, Point{2, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != nil {
		t.Errorf("path = %v, want nil", pathPoints(path))
	}
	if g.Reached(Point{2, 2}) {
		t.Error("goal should not be reached")
	}
	if !g.Reached(Point{0, 2}) {
		t.Error("cells on the start side should be reached")
	}
}

func TestFindPathStartIsGoal(t *testing.T) {
	g, _ := NewGrid(4, 4)
	path, err := FindPath(g, Point{1, 2}, Point{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := pathPoints(path); !samePoints(got, []Point{{1, 2}}) {
		t.Errorf("path = %v, want single cell", got)
	}
}

func TestSearchBlockedEndpoint(t *testing.T) {
	g, _ := ParseGrid([]string{
		"#..",
		"...",
	})
	found, err := g.Search(Point{0, 0}, Point{2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("search from a blocked start should fail")
	}
	if g.ReconstructPath(Point{2, 1}) != nil {
		t.Error("expected nil path")
	}
}

func TestSearchOutOfBounds(t *testing.T) {
	g, _ := NewGrid(3, 3)
	for _, tc := range []struct {
		name        string
		start, goal Point
	}{
		{"start", Point{-1, 0}, Point{2, 2}},
		{"goal", Point{0, 0}, Point{3, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FindPath(g, tc.start, tc.goal)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("err = %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestSearchResetsBetweenRuns(t *testing.T) {
	g, _ := NewGrid(5, 1)

	if _, err := FindPath(g, Point{0, 0}, Point{4, 0}); err != nil {
		t.Fatal(err)
	}
	path, err := FindPath(g, Point{4, 0}, Point{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{4, 0}, {3, 0}, {2, 0}}
	if got := pathPoints(path); !samePoints(got, want) {
		t.Errorf("path = %v, want %v", got, want)
	}
	if g.Reached(Point{0, 0}) {
		t.Error("second search should stop at its goal")
	}
}

func TestFindPathShortestOnRandomGrids(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		start, goal := Point{0, 0}, Point{11, 7}
		g, err := BuildGrid(12, 8, 0.2, start, goal, rng)
		if err != nil {
			t.Fatal(err)
		}
		path, err := FindPath(g, start, goal)
		if err != nil {
			t.Fatal(err)
		}
		if path == nil {
			continue
		}
		checkPath(t, g, path, start, goal)
		if path.Steps() < 18 {
			t.Errorf("seed %d: %d steps is shorter than the Manhattan distance", seed, path.Steps())
		}
	}
}

func TestBuildGridEndpointsWalkable(t *testing.T) {
	start, goal := Point{0, 0}, Point{4, 3}
	g, err := BuildGrid(5, 4, 1, start, goal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		t.Error("start and goal must be walkable")
	}
	if n := g.WalkableCount(); n != 2 {
		t.Errorf("WalkableCount = %d, want 2", n)
	}

	open, err := BuildGrid(5, 4, 0, start, goal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := open.WalkableCount(); n != 20 {
		t.Errorf("WalkableCount = %d, want 20", n)
	}
}

func TestBuildGridDeterministic(t *testing.T) {
	a, _ := BuildGrid(10, 10, 0.3, Point{0, 0}, Point{9, 9}, rand.New(rand.NewSource(7)))
	b, _ := BuildGrid(10, 10, 0.3, Point{0, 0}, Point{9, 9}, rand.New(rand.NewSource(7)))
	if a.String() != b.String() {
		t.Error("same seed produced different grids")
	}
}

func TestBuildGridErrors(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		prob        float64
		start, goal Point
		want        error
	}{
		{"zero width", 0, 3, 0.1, Point{0, 0}, Point{0, 0}, ErrEmptyGrid},
		{"too many cells", 1 << 16, 1 << 16, 0.1, Point{0, 0}, Point{0, 0}, ErrGridTooLarge},
		{"negative probability", 3, 3, -0.1, Point{0, 0}, Point{2, 2}, ErrBadProbability},
		{"probability above one", 3, 3, 1.5, Point{0, 0}, Point{2, 2}, ErrBadProbability},
		{"start outside", 3, 3, 0.1, Point{3, 0}, Point{2, 2}, ErrOutOfBounds},
		{"goal outside", 3, 3, 0.1, Point{0, 0}, Point{2, -1}, ErrOutOfBounds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildGrid(tc.w, tc.h, tc.prob, tc.start, tc.goal, nil)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuildNoiseGrid(t *testing.T) {
	start, goal := Point{0, 0}, Point{15, 15}
	g, err := BuildNoiseGrid(16, 16, 0.5, start, goal, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsWalkable(start) || !g.IsWalkable(goal) {
		t.Error("start and goal must be walkable")
	}

	same, _ := BuildNoiseGrid(16, 16, 0.5, start, goal, 42)
	if g.String() != same.String() {
		t.Error("same seed produced different grids")
	}

	if _, err := BuildNoiseGrid(16, 16, 2, start, goal, 42); !errors.Is(err, ErrBadProbability) {
		t.Errorf("err = %v, want ErrBadProbability", err)
	}
}

func TestParseGridRagged(t *testing.T) {
	_, err := ParseGrid([]string{"...", ".."})
	if !errors.Is(err, ErrRaggedRows) {
		t.Errorf("err = %v, want ErrRaggedRows", err)
	}
	if _, err := ParseGrid(nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("err = %v, want ErrEmptyGrid", err)
	}
}

func TestRender(t *testing.T) {
	g, _ := ParseGrid([]string{
		"..#",
		"...",
	})
	path, _ := FindPath(g, Point{0, 0}, Point{2, 1})
	want := "**#\n.**\n"
	if got := g.Render(path); got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestWaypoints(t *testing.T) {
	path := Path{{X: 0, Y: 0, Walkable: true}, {X: 1, Y: 0, Walkable: true}, {X: 1, Y: 1, Walkable: true}}
	wps := path.Waypoints(2)
	if len(wps) != 3 {
		t.Fatalf("len = %d, want 3", len(wps))
	}
	if wps[2].X != 3 || wps[2].Z != 3 || wps[2].Y != 0 {
		t.Errorf("waypoint 2 = %v, want (3,0,3)", wps[2])
	}
	if p := WorldToGrid(wps[2], 2); p != (Point{1, 1}) {
		t.Errorf("WorldToGrid = %v, want (1,1)", p)
	}
}

func TestNewGridTooLarge(t *testing.T) {
	if _, err := NewGrid(1<<16, 1<<16); !errors.Is(err, ErrGridTooLarge) {
		t.Errorf("err = %v, want ErrGridTooLarge", err)
	}
	if _, err := NewGrid(math.MaxInt32, 2); !errors.Is(err, ErrGridTooLarge) {
		t.Errorf("err = %v, want ErrGridTooLarge", err)
	}
}

func TestWorldToGrid(t *testing.T) {
	tests := []struct {
		name string
		pos  r3.Vec
		cell float64
		want Point
	}{
		{"origin", r3.Vec{}, 1, Point{0, 0}},
		{"inside first cell", r3.Vec{X: 0.9, Z: 0.2}, 1, Point{0, 0}},
		{"just left of origin", r3.Vec{X: -0.5}, 1, Point{-1, 0}},
		{"negative z", r3.Vec{X: 3, Z: -4.5}, 2, Point{1, -3}},
		{"cell edge", r3.Vec{X: 4, Z: 2}, 2, Point{2, 1}},
		{"zero cell size", r3.Vec{X: 2.5, Z: -0.5}, 0, Point{2, -1}},
		{"negative cell size", r3.Vec{X: 2.5}, -3, Point{2, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WorldToGrid(tc.pos, tc.cell); got != tc.want {
				t.Errorf("WorldToGrid(%v, %v) = %v, want %v", tc.pos, tc.cell, got, tc.want)
			}
		})
	}

	if v := GridToWorld(Point{2, 3}, 0); v != (r3.Vec{X: 2.5, Z: 3.5}) {
		t.Errorf("GridToWorld with zero cell size = %v, want (2.5,0,3.5)", v)
	}
}

func BenchmarkFindPath(b *testing.B) {
	start, goal := Point{0, 0}, Point{63, 63}
	g, err := BuildGrid(64, 64, 0.25, start, goal, rand.New(rand.NewSource(3)))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FindPath(g, start, goal); err != nil {
			b.Fatal(err)
		}
	}
}
