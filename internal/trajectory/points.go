package trajectory

import "sort"

// Point is a calibration point recorded by the operator, in screen pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointSet keeps calibration points ordered by X ascending. Indexes are
// assigned after sorting, so every mutation reports the index the point
// ended up at. Not safe for concurrent use; the Simulation serialises
// access to its point set.
type PointSet struct {
	pts []Point
}

// Len returns the number of calibration points.
func (ps *PointSet) Len() int {
	return len(ps.pts)
}

// Points returns a snapshot of the calibration points in X order.
func (ps *PointSet) Points() []Point {
	out := make([]Point, len(ps.pts))
	copy(out, ps.pts)
	return out
}

// Set replaces the whole point set.
func (ps *PointSet) Set(pts []Point) {
	ps.pts = make([]Point, len(pts))
	copy(ps.pts, pts)
	ps.sort()
}

// Add inserts a point and returns its index after re-sorting.
func (ps *PointSet) Add(x, y int) int {
	p := Point{X: x, Y: y}
	ps.pts = append(ps.pts, p)
	ps.sort()
	return ps.indexOf(p)
}

// Update sets the point at index i to absolute coordinates and returns
// the index it occupies after re-sorting.
func (ps *PointSet) Update(i, x, y int) (int, error) {
	if i < 0 || i >= len(ps.pts) {
		return 0, ErrIndexOutOfRange
	}
	p := Point{X: x, Y: y}
	ps.pts[i] = p
	ps.sort()
	return ps.indexOf(p), nil
}

// Nudge moves the point at index i by a relative delta and returns the
// index it occupies after re-sorting.
func (ps *PointSet) Nudge(i, dx, dy int) (int, error) {
	if i < 0 || i >= len(ps.pts) {
		return 0, ErrIndexOutOfRange
	}
	return ps.Update(i, ps.pts[i].X+dx, ps.pts[i].Y+dy)
}

// Delete removes the point at index i.
func (ps *PointSet) Delete(i int) error {
	if i < 0 || i >= len(ps.pts) {
		return ErrIndexOutOfRange
	}
	ps.pts = append(ps.pts[:i], ps.pts[i+1:]...)
	return nil
}

// Clear removes all calibration points.
func (ps *PointSet) Clear() {
	ps.pts = nil
}

func (ps *PointSet) sort() {
	sort.SliceStable(ps.pts, func(a, b int) bool { return ps.pts[a].X < ps.pts[b].X })
}

func (ps *PointSet) indexOf(p Point) int {
	for i, q := range ps.pts {
		if q == p {
			return i
		}
	}
	return -1
}
