package entity

import "math"

type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

func (r Rect) IsZero() bool {
	return r.Width == 0 && r.Height == 0 && r.X == 0 && r.Y == 0
}

// CenterDistance is the Euclidean distance between the centers of two rects.
func CenterDistance(a, b Rect) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}

type ElementState struct {
	Visible         bool     `json:"visible"`
	Enabled         bool     `json:"enabled"`
	Focused         bool     `json:"focused"`
	Checked         *bool    `json:"checked,omitempty"`
	Value           string   `json:"value,omitempty"`
	TextContent     string   `json:"textContent,omitempty"`
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	Rect            Rect     `json:"rect"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
