package entity

import "fmt"

// Point is a board coordinate; x grows to the right, y grows downwards.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add translates a piece-local offset into an absolute board coordinate.
func (that Point) Add(other Point) Point {
	return Point{X: that.X + other.X, Y: that.Y + other.Y}
}

func (that Point) String() string {
	return fmt.Sprintf("(%d, %d)", that.X, that.Y)
}
