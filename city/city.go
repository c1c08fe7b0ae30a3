// Package city holds the point records the game moves between.
package city

import (
	"fmt"

	"github.com/paulmach/orb"
)

// City is a populated place fetched from the cities feature layer. Cities
// are treated as immutable once fetched and may be shared freely.
type City struct {
	ID        int64
	Name      string
	AdminName string
	Country   string
	Lat       float64
	Lng       float64

	// Population is only meaningful when HasPopulation is true. A city whose
	// population is null in the source data never qualifies for a game.
	Population    int64
	HasPopulation bool
}

// Point returns the city location as an orb point (x = longitude).
func (c City) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Qualifies reports whether the city may take part in a game with the given
// minimum population.
func (c City) Qualifies(minPopulation int64) bool {
	return c.HasPopulation && c.Population >= minPopulation
}

// Description is the long form shown by the info command.
func (c City) Description() string {
	return fmt.Sprintf("%s, %s, %s", c.Name, c.AdminName, c.Country)
}

func (c City) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.ID)
}

// Pair is the starting city and the hidden destination of a game.
type Pair struct {
	Current City
	Target  City
}

// Valid checks the pair invariants for a minimum population.
func (p Pair) Valid(minPopulation int64) error {
	if p.Current.ID == p.Target.ID {
		return fmt.Errorf("current and target city are both %v", p.Current.ID)
	}
	if !p.Current.Qualifies(minPopulation) {
		return fmt.Errorf("city %v does not meet population %d", p.Current, minPopulation)
	}
	if !p.Target.Qualifies(minPopulation) {
		return fmt.Errorf("city %v does not meet population %d", p.Target, minPopulation)
	}
	return nil
}
