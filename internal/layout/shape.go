package layout

import "math"

// Point is a position in graph coordinates, y growing downwards.
type Point struct {
	X, Y float64
}

// Rect is a node box given by its centre and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return math.Abs(p.X-r.X) <= r.Width/2 && math.Abs(p.Y-r.Y) <= r.Height/2
}

// Shape computes where an edge toward a point leaves a node box.
type Shape interface {
	Intersect(box Rect, toward Point) Point
}

// ShapeFunc adapts a function to Shape.
type ShapeFunc func(box Rect, toward Point) Point

// Intersect calls f.
func (f ShapeFunc) Intersect(box Rect, toward Point) Point { return f(box, toward) }

// Arrow is an edge marker.
type Arrow struct {
	Length float64
	Width  float64
}

// Registered shape and arrow names.
const (
	ShapeRectH  = "customRectH"
	ShapeRectV  = "customRectV"
	ShapeCircle = "customCircle"

	ArrowDefault = "customArrow"
)

// rectH attaches edges to the middle of the left or right side.
func rectH(box Rect, toward Point) Point {
	if toward.X >= box.X {
		return Point{X: box.X + box.Width/2, Y: box.Y}
	}
	return Point{X: box.X - box.Width/2, Y: box.Y}
}

// rectV attaches edges to the middle of the top or bottom side.
func rectV(box Rect, toward Point) Point {
	if toward.Y >= box.Y {
		return Point{X: box.X, Y: box.Y + box.Height/2}
	}
	return Point{X: box.X, Y: box.Y - box.Height/2}
}

// circle attaches edges on the inscribed circle, along the centre line.
func circle(box Rect, toward Point) Point {
	dx, dy := toward.X-box.X, toward.Y-box.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return Point{X: box.X, Y: box.Y}
	}
	r := math.Min(box.Width, box.Height) / 2
	return Point{X: box.X + dx/d*r, Y: box.Y + dy/d*r}
}

// RectShape returns the rectangle shape attaching edges along direction.
func RectShape(dir Direction) string {
	if dir == Vertical {
		return ShapeRectV
	}
	return ShapeRectH
}

// Registrar accepts shape and arrow registrations.
type Registrar interface {
	RegisterShape(name string, s Shape)
	RegisterArrow(name string, a Arrow)
}

// RegisterDefaults registers the built-in shapes and arrow on e.
func RegisterDefaults(e Registrar) {
	e.RegisterShape(ShapeRectH, ShapeFunc(rectH))
	e.RegisterShape(ShapeRectV, ShapeFunc(rectV))
	e.RegisterShape(ShapeCircle, ShapeFunc(circle))
	e.RegisterArrow(ArrowDefault, Arrow{Length: 8, Width: 6})
}
