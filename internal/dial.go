package internal

import (
	"math"
	"strings"
	"time"
)

// The face is drawn on a character grid. Terminal cells are about twice as
// tall as they are wide, so horizontal distances are doubled.
const (
	dialRows   = 15
	dialCols   = 31
	dialAspect = 2.0

	secondsRadius = 6.0
	tickRadius    = 7.0

	minutesRadius = 2.0
	minutesRow    = 4 // centre of the minutes sub-dial
)

// handAngle converts a count of seconds (or minutes) into radians clockwise
// from twelve o'clock, six degrees per unit.
func handAngle(units float64) float64 {
	return units * 6 * math.Pi / 180
}

// dialPoint returns the cell at distance radius (in rows) from the centre
// (col, row) along the hand for units.
func dialPoint(col, row int, radius, units float64) (int, int) {
	a := handAngle(units)
	x := float64(col) + radius*math.Sin(a)*dialAspect
	y := float64(row) - radius*math.Cos(a)
	return int(math.Round(x)), int(math.Round(y))
}

type grid [dialRows][dialCols]rune

func (g *grid) set(col, row int, r rune) {
	if row < 0 || row >= dialRows || col < 0 || col >= dialCols {
		return
	}
	g[row][col] = r
}

func (g *grid) hand(col, row int, radius, units float64, r rune) {
	steps := int(radius*dialAspect*2) + 1
	for i := 1; i <= steps; i++ {
		c, rw := dialPoint(col, row, radius*float64(i)/float64(steps), units)
		g.set(c, rw, r)
	}
}

// renderDial draws the face for elapsed: a long seconds hand around the
// centre and a short minutes hand on the upper sub-dial.
func renderDial(elapsed time.Duration) string {
	var g grid
	for r := range g {
		for c := range g[r] {
			g[r][c] = ' '
		}
	}

	cc, cr := dialCols/2, dialRows/2
	for h := 0; h < 12; h++ {
		c, r := dialPoint(cc, cr, tickRadius, float64(h*5))
		mark := '·'
		if h == 0 {
			mark = '+'
		}
		g.set(c, r, mark)
	}

	g.hand(cc, minutesRow, minutesRadius, elapsed.Minutes(), '░')
	g.hand(cc, cr, secondsRadius, elapsed.Seconds(), '█')
	g.set(cc, cr, '●')

	lines := make([]string, dialRows)
	for r := range g {
		lines[r] = strings.TrimRight(string(g[r][:]), " ")
	}
	return strings.Join(lines, "\n")
}
