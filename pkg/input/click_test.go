package input

import (
	"testing"
	"time"

	"github.com/matzehuels/dotgrid/pkg/geom"
)

type press struct {
	at time.Duration
	p  geom.Point
}

func TestClickCounter(t *testing.T) {
	t0 := time.Unix(100, 0)
	p := geom.Point{X: 50, Y: 50}

	tests := []struct {
		name    string
		presses []press
		want    []int
	}{
		{"double click", []press{{0, p}, {150 * time.Millisecond, p}}, []int{1, 2}},
		{"triple click", []press{{0, p}, {100 * time.Millisecond, p}, {200 * time.Millisecond, p}}, []int{1, 2, 3}},
		{"too slow", []press{{0, p}, {time.Second, p}}, []int{1, 1}},
		{"moved away", []press{{0, p}, {50 * time.Millisecond, geom.Point{X: 80, Y: 50}}}, []int{1, 1}},
		{"small jitter", []press{{0, p}, {50 * time.Millisecond, geom.Point{X: 52, Y: 51}}}, []int{1, 2}},
		{"clock went backwards", []press{{time.Second, p}, {0, p}}, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClickCounter()
			for i, pr := range tt.presses {
				if got := c.Press(pr.p, t0.Add(pr.at)); got != tt.want[i] {
					t.Errorf("press %d = %d, want %d", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestClickCounterReset(t *testing.T) {
	c := &ClickCounter{}
	now := time.Unix(0, 0)
	c.Press(geom.Point{}, now)
	c.Reset()
	if got := c.Press(geom.Point{}, now.Add(time.Millisecond)); got != 1 {
		t.Errorf("press after Reset = %d, want 1", got)
	}
}
