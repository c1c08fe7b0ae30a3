package shell

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/message"

	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/session"
)

var welcomeMessages = []string{
	"Though you've just arrived, you look around and immediately realize that you are in {city}.",
	"Something in the air tells you you've just arrived in {city}.",
	"That rustic aroma seems so familiar. \"Ah yes,\" you tell yourself. \"This could only be {city}.\"",
	"The sunsets in {city} are so beautiful this time of year. If only you had time to linger.",
}

const whatsNext = "What's next, Wanderer? (n, s, e, w, info)"

func welcome(c city.City, intn func(int) int) string {
	return strings.ReplaceAll(welcomeMessages[intn(len(welcomeMessages))], "{city}", c.Name)
}

func km(d float64) int64 {
	return int64(math.Round(d))
}

func distanceLine(p *message.Printer, distanceKm float64) string {
	return p.Sprintf("You are now %dkm from your destination.", km(distanceKm))
}

// renderReport turns a command report into what the player sees.
func renderReport(p *message.Printer, r *session.Report, intn func(int) int) string {
	var sb strings.Builder
	switch r.Kind {
	case session.Moved:
		fmt.Fprintf(&sb, "The next city is %s.\n", r.Current.Name)
		if r.Arrived {
			fmt.Fprintf(&sb, "You made it! %s was your secret destination all along.\n", r.Current.Name)
			sb.WriteString("Type save to keep a record of your trip.")
			return sb.String()
		}
		sb.WriteString(welcome(r.Current, intn))
		sb.WriteString("\n")
		sb.WriteString(distanceLine(p, r.DistanceKm))
	case session.MoveFailed:
		sb.WriteString("Could not move to a city at this time.\n")
		sb.WriteString(distanceLine(p, r.DistanceKm))
	case session.Info:
		fmt.Fprintf(&sb, "Current location: %s\n", r.Current.Description())
		sb.WriteString(p.Sprintf("Your destination is %dkm away at a bearing of %d degrees.",
			km(r.DistanceKm), km(r.Bearing)%360))
	case session.Unrecognized:
		fmt.Fprintf(&sb, "I don't know how to %s", r.Command)
	}
	return sb.String()
}
