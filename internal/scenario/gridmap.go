package scenario

import (
	"fmt"
	"math"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// Grid cell markers.
const (
	obstacleCell = '#'
	freeCell     = '.'
)

// GridMap is an occupancy grid. Row i of the input covers y in [i*cell, (i+1)*cell).
// Everything outside the grid counts as occupied.
type GridMap struct {
	width     int
	height    int
	cell      float64
	occupied  []bool
	obstacles []cellBox
}

type cellBox struct {
	minX, minY, maxX, maxY float64
}

var _ contract.CollisionModel = &GridMap{} // Compile-time check

// NewGridMap parses rows of '#' (occupied) and '.' (free) cells.
func NewGridMap(rows []string, cellSize float64) (*GridMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be greater than 0 (received %g)", cellSize)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("grid row 0 is empty")
	}
	g := &GridMap{
		width:    width,
		height:   len(rows),
		cell:     cellSize,
		occupied: make([]bool, width*len(rows)),
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("grid row %d has %d cells, expected %d", y, len(row), width)
		}
		for x, c := range row {
			switch c {
			case obstacleCell:
				g.occupied[y*width+x] = true
				g.obstacles = append(g.obstacles, cellBox{
					minX: float64(x) * cellSize,
					minY: float64(y) * cellSize,
					maxX: float64(x+1) * cellSize,
					maxY: float64(y+1) * cellSize,
				})
			case freeCell:
			default:
				return nil, fmt.Errorf("grid row %d has invalid cell %q", y, c)
			}
		}
	}
	return g, nil
}

// Width returns the map width in world units.
func (g *GridMap) Width() float64 { return float64(g.width) * g.cell }

// Height returns the map height in world units.
func (g *GridMap) Height() float64 { return float64(g.height) * g.cell }

// CellSize returns the edge length of one cell.
func (g *GridMap) CellSize() float64 { return g.cell }

// Collides reports whether the point is outside the map or in an occupied cell.
func (g *GridMap) Collides(x, y float64) bool {
	if x < 0 || y < 0 || x >= g.Width() || y >= g.Height() {
		return true
	}
	cx := int(x / g.cell)
	cy := int(y / g.cell)
	return g.occupied[cy*g.width+cx]
}

// CollidesPolygon samples the polygon edges at a quarter cell spacing.
func (g *GridMap) CollidesPolygon(polygon []schema.Point) bool {
	if len(polygon) == 0 {
		return false
	}
	step := g.cell / 4
	for i, a := range polygon {
		b := polygon[(i+1)%len(polygon)]
		n := max(1, int(math.Ceil(math.Hypot(b.X-a.X, b.Y-a.Y)/step)))
		for k := range n {
			f := float64(k) / float64(n)
			if g.Collides(a.X+f*(b.X-a.X), a.Y+f*(b.Y-a.Y)) {
				return true
			}
		}
	}
	return false
}

// CollidesSegment reports whether the segment from a to b leaves the map or crosses an
// occupied cell. Every cell the segment passes through is visited; a segment through a
// cell corner also checks the two cells sharing that corner.
func (g *GridMap) CollidesSegment(a, b schema.Point) bool {
	if g.Collides(a.X, a.Y) || g.Collides(b.X, b.Y) {
		return true
	}
	cx, cy := int(a.X/g.cell), int(a.Y/g.cell)
	ex, ey := int(b.X/g.cell), int(b.Y/g.cell)
	stepX, tMaxX, tDeltaX := g.traversal(a.X, b.X-a.X, cx)
	stepY, tMaxY, tDeltaY := g.traversal(a.Y, b.Y-a.Y, cy)

	for n := absInt(ex-cx) + absInt(ey-cy); n > 0; {
		switch {
		case tMaxX < tMaxY:
			cx += stepX
			tMaxX += tDeltaX
			n--
		case tMaxY < tMaxX:
			cy += stepY
			tMaxY += tDeltaY
			n--
		default:
			if g.occupiedCell(cx+stepX, cy) || g.occupiedCell(cx, cy+stepY) {
				return true
			}
			cx += stepX
			cy += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
			n -= 2
		}
		if g.occupiedCell(cx, cy) {
			return true
		}
	}
	return false
}

// traversal returns the cell step along one axis, the segment parameter of the first
// cell boundary and the parameter distance between boundaries.
func (g *GridMap) traversal(origin, delta float64, cell int) (int, float64, float64) {
	switch {
	case delta > 0:
		return 1, (float64(cell+1)*g.cell - origin) / delta, g.cell / delta
	case delta < 0:
		return -1, (float64(cell)*g.cell - origin) / delta, -g.cell / delta
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

// occupiedCell reports whether a cell is occupied. Cells outside the grid are occupied.
func (g *GridMap) occupiedCell(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= g.width || cy >= g.height {
		return true
	}
	return g.occupied[cy*g.width+cx]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Distance returns the distance to the closest occupied cell or map border.
// Points in collision have distance 0.
func (g *GridMap) Distance(x, y float64) float64 {
	if g.Collides(x, y) {
		return 0
	}
	d := math.Min(math.Min(x, y), math.Min(g.Width()-x, g.Height()-y))
	for _, box := range g.obstacles {
		dx := math.Max(0, math.Max(box.minX-x, x-box.maxX))
		dy := math.Max(0, math.Max(box.minY-y, y-box.maxY))
		d = math.Min(d, math.Hypot(dx, dy))
	}
	return d
}

// DistanceGradient returns the central difference gradient of Distance.
func (g *GridMap) DistanceGradient(x, y float64) (float64, float64) {
	h := g.cell / 2
	dx := (g.Distance(x+h, y) - g.Distance(x-h, y)) / (2 * h)
	dy := (g.Distance(x, y+h) - g.Distance(x, y-h)) / (2 * h)
	return dx, dy
}

// Footprint places a robot shape at a pose.
func Footprint(shape []schema.Point, pose schema.Pose) []schema.Point {
	sin, cos := math.Sincos(pose.Heading)
	out := make([]schema.Point, len(shape))
	for i, p := range shape {
		out[i] = schema.Point{
			X: pose.X + p.X*cos - p.Y*sin,
			Y: pose.Y + p.X*sin + p.Y*cos,
		}
	}
	return out
}
