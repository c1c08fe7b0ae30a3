package session

import (
	"time"

	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/geodesy"
)

// State is where a session is in its lifecycle.
type State int

const (
	AwaitingSetup State = iota
	Ready
	AwaitingCommand
	Moving
	// Finished is only reached when the session is configured to end on
	// arrival at the target.
	Finished
)

func (s State) String() string {
	switch s {
	case AwaitingSetup:
		return "awaiting-setup"
	case Ready:
		return "ready"
	case AwaitingCommand:
		return "awaiting-command"
	case Moving:
		return "moving"
	case Finished:
		return "finished"
	}
	return "invalid"
}

// Kind says what a command did.
type Kind int

const (
	Moved Kind = iota + 1
	MoveFailed
	Info
	Unrecognized
)

// Report is what the session hands back to its host after a command.
type Report struct {
	Kind      Kind
	Command   string
	Direction geodesy.Direction
	Current   city.City
	// DistanceKm is the distance from Current to the target.
	DistanceKm float64
	// Bearing to the target, set for Info reports.
	Bearing float64
	// Arrived is set when a move lands on the target city.
	Arrived bool
	// Err explains a MoveFailed report.
	Err error
}

// Event types sent to an Observer.
const (
	EventStarted    = "started"
	EventMoved      = "moved"
	EventMoveFailed = "move-failed"
	EventArrived    = "arrived"
)

// Event is a notable change in a session.
type Event struct {
	SessionID  string            `json:"session_id"`
	Type       string            `json:"type"`
	Direction  geodesy.Direction `json:"direction,omitempty"`
	CityID     int64             `json:"city_id"`
	CityName   string            `json:"city_name"`
	DistanceKm float64           `json:"distance_km"`
	Visited    int               `json:"visited"`
	Error      string            `json:"error,omitempty"`
	At         time.Time         `json:"at"`
}

// Observer is told about session events. Observers must not block.
type Observer interface {
	Observe(evt Event)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
