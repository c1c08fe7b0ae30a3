package shell

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/geodesy"
	"github.com/domino14/wanderer/sampler"
	"github.com/domino14/wanderer/session"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"   ", nil, errNoData},
		{"N", &shellcmd{"n", []string{}}, nil},
		{"  info  ", &shellcmd{"info", []string{}}, nil},
		{`help "a topic"`, &shellcmd{"help", []string{"a topic"}}, nil},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestExtractFieldsBadQuote(t *testing.T) {
	is := is.New(t)
	_, err := extractFields(`save "unterminated`)
	is.True(err != nil)
}

var oslo = city.City{ID: 7, Name: "Oslo", AdminName: "Oslo", Country: "Norway",
	Lat: 59.91, Lng: 10.75, Population: 709037, HasPopulation: true}

func first(int) int { return 0 }

func TestWelcome(t *testing.T) {
	is := is.New(t)
	is.Equal(welcome(oslo, first),
		"Though you've just arrived, you look around and immediately realize that you are in Oslo.")
	is.Equal(welcome(oslo, func(n int) int { return n - 1 }),
		"The sunsets in Oslo are so beautiful this time of year. If only you had time to linger.")
}

func TestRenderReport(t *testing.T) {
	is := is.New(t)
	p := message.NewPrinter(language.English)

	moved := renderReport(p, &session.Report{Kind: session.Moved, Direction: geodesy.North,
		Current: oslo, DistanceKm: 1234.4}, first)
	is.Equal(moved, "The next city is Oslo.\n"+
		"Though you've just arrived, you look around and immediately realize that you are in Oslo.\n"+
		"You are now 1,234km from your destination.")

	arrived := renderReport(p, &session.Report{Kind: session.Moved, Current: oslo, Arrived: true}, first)
	is.Equal(arrived, "The next city is Oslo.\n"+
		"You made it! Oslo was your secret destination all along.\n"+
		"Type save to keep a record of your trip.")

	failed := renderReport(p, &session.Report{Kind: session.MoveFailed, Current: oslo,
		DistanceKm: 88.6, Err: errors.New("job failed")}, first)
	is.Equal(failed, "Could not move to a city at this time.\nYou are now 89km from your destination.")

	info := renderReport(p, &session.Report{Kind: session.Info, Current: oslo,
		DistanceKm: 512, Bearing: 359.7}, first)
	is.Equal(info, "Current location: Oslo, Oslo, Norway\n"+
		"Your destination is 512km away at a bearing of 0 degrees.")

	unknown := renderReport(p, &session.Report{Kind: session.Unrecognized, Command: "fly"}, first)
	is.Equal(unknown, "I don't know how to fly")
}

func TestChooseDifficulty(t *testing.T) {
	is := is.New(t)
	d, n, ok := chooseDifficulty("2", 40000)
	is.True(ok)
	is.Equal(d, sampler.Hard)
	is.Equal(n, 1000)

	d, n, ok = chooseDifficulty("3", 40000)
	is.True(ok)
	is.Equal(d, sampler.Legendary)
	is.Equal(n, 40000)

	d, n, ok = chooseDifficulty("seven", 40000)
	is.True(!ok)
	is.Equal(d, sampler.Easy)
	is.Equal(n, 10)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := NewShellCompleter(nil)

	matches, n := c.Do([]rune("in"), 2)
	is.Equal(n, 2)
	is.Equal(matches, [][]rune{[]rune("fo")})

	matches, n = c.Do([]rune("e"), 1)
	is.Equal(n, 1)
	is.Equal(len(matches), 2) // e, exit

	matches, _ = c.Do([]rune("save "), 5)
	is.Equal(len(matches), 0)
}
