package sampler

import (
	"strconv"
	"strings"
)

// Difficulty selects how many of the most populous cities take part in a
// game. Harder games include smaller cities.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Legendary
)

// AllCities is the city count meaning "every city with a population".
const AllCities = 0

var difficultyNames = []string{"easy", "medium", "hard", "legendary"}

func (d Difficulty) String() string {
	if d < Easy || d > Legendary {
		return "difficulty(" + strconv.Itoa(int(d)) + ")"
	}
	return difficultyNames[d]
}

// CityCount is the number of cities in play for the difficulty, or AllCities.
func (d Difficulty) CityCount() int {
	switch d {
	case Medium:
		return 100
	case Hard:
		return 1000
	case Legendary:
		return AllCities
	}
	return 10
}

// ParseDifficulty accepts either the number or the name of a difficulty.
// Anything else yields Easy and false.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= int(Easy) && n <= int(Legendary) {
			return Difficulty(n), true
		}
		return Easy, false
	}
	for i, name := range difficultyNames {
		if s == name {
			return Difficulty(i), true
		}
	}
	return Easy, false
}
