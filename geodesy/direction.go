// Package geodesy handles the compass side of the game: directions,
// bearings between cities and distances in kilometers.
package geodesy

import "strings"

// Direction is one of the four cardinal directions a player can travel.
type Direction string

const (
	North Direction = "n"
	South Direction = "s"
	East  Direction = "e"
	West  Direction = "w"
)

// Directions lists the valid directions in compass order.
var Directions = []Direction{North, East, South, West}

// ParseDirection accepts the one-letter form in any case.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case North, South, East, West:
		return d, true
	}
	return "", false
}

// Name is the long form used in player messages.
func (d Direction) Name() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return string(d)
}
