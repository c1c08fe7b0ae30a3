// Package session runs one game: it sets up the city pair, takes direction
// and info commands one at a time and keeps track of where the player is.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/geodesy"
	"github.com/domino14/wanderer/sampler"
)

// ErrSessionOver is returned for commands sent after the player reached the
// target in a session that ends on arrival.
var ErrSessionOver = errors.New("session is over")

// Preparer picks the population threshold and the city pair.
type Preparer interface {
	Prepare(ctx context.Context, cityCount int) (*sampler.Setup, error)
}

// Mover finds the next city in a direction.
type Mover interface {
	FindNearest(ctx context.Context, layerURL string, from city.City, minPopulation int64, d geodesy.Direction) (city.City, error)
}

// Options tune a session.
type Options struct {
	// LayerURL is the cities feature layer handed to the analysis service.
	LayerURL string
	// EndOnArrival finishes the session once the player reaches the target.
	EndOnArrival bool
	Observer     Observer
}

// Session is a single game. It is not safe for concurrent use; a host sends
// one command at a time and waits for its report.
type Session struct {
	id            string
	minPopulation int64
	current       city.City
	target        city.City
	distanceKm    float64
	visited       []int64
	state         State

	mover    Mover
	geometry geodesy.Measurer
	opts     Options
}

// New sets up a game over cityCount cities (sampler.AllCities for all of
// them). Any failure during setup aborts; no partial session is returned.
func New(ctx context.Context, prep Preparer, mover Mover, geometry geodesy.Measurer,
	cityCount int, opts Options) (*Session, error) {

	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	s := &Session{
		id:       uuid.NewString(),
		state:    AwaitingSetup,
		mover:    mover,
		geometry: geometry,
		opts:     opts,
	}

	setup, err := prep.Prepare(ctx, cityCount)
	if err != nil {
		return nil, fmt.Errorf("failed to set up game: %w", err)
	}
	s.minPopulation = setup.MinPopulation
	s.current = setup.Pair.Current
	s.target = setup.Pair.Target
	s.visited = []int64{s.current.ID}
	s.state = Ready

	d, err := geodesy.DistanceKm(ctx, geometry, s.current, s.target)
	if err != nil {
		return nil, fmt.Errorf("failed to measure distance to target: %w", err)
	}
	s.distanceKm = d
	s.state = AwaitingCommand

	log.Info().Str("session", s.id).Int64("min-population", s.minPopulation).
		Stringer("start", s.current).Msg("game ready")
	s.emit(EventStarted, "", nil)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Current() city.City {
	return s.current
}

func (s *Session) Target() city.City {
	return s.target
}

func (s *Session) DistanceKm() float64 {
	return s.distanceKm
}

func (s *Session) MinPopulation() int64 {
	return s.minPopulation
}

func (s *Session) Finished() bool {
	return s.state == Finished
}

func (s *Session) Visited() []int64 {
	return slices.Clone(s.visited)
}

// Execute runs one player command. Directions move, "info" reports
// distance and bearing, anything else comes back as Unrecognized with no
// change to the session. A failed move is a MoveFailed report, not an error.
func (s *Session) Execute(ctx context.Context, line string) (*Report, error) {
	cmd := strings.ToLower(strings.TrimSpace(line))
	if d, ok := geodesy.ParseDirection(cmd); ok {
		r, err := s.Move(ctx, d)
		if errors.Is(err, ErrSessionOver) {
			return nil, err
		}
		if err != nil {
			return &Report{Kind: MoveFailed, Command: cmd, Direction: d,
				Current: s.current, DistanceKm: s.distanceKm, Err: err}, nil
		}
		return r, nil
	}
	if cmd == "info" {
		if s.state == Finished {
			return nil, ErrSessionOver
		}
		return s.Info(), nil
	}
	return &Report{Kind: Unrecognized, Command: cmd, Current: s.current, DistanceKm: s.distanceKm}, nil
}

// Move travels in direction d. On failure the current city and distance
// are left untouched and the error is returned.
func (s *Session) Move(ctx context.Context, d geodesy.Direction) (*Report, error) {
	if s.state == Finished {
		return nil, ErrSessionOver
	}
	s.state = Moving
	defer func() {
		if s.state == Moving {
			s.state = AwaitingCommand
		}
	}()

	next, err := s.mover.FindNearest(ctx, s.opts.LayerURL, s.current, s.minPopulation, d)
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Str("direction", string(d)).Msg("move failed")
		s.emit(EventMoveFailed, d, err)
		return nil, err
	}

	arrived := next.ID == s.target.ID
	dist := 0.0
	if !arrived {
		dist, err = geodesy.DistanceKm(ctx, s.geometry, next, s.target)
		if err != nil {
			s.emit(EventMoveFailed, d, err)
			return nil, err
		}
	}

	s.current = next
	s.distanceKm = dist
	s.visited = append(s.visited, next.ID)
	log.Debug().Str("session", s.id).Stringer("city", next).Float64("distance-km", dist).Msg("moved")
	s.emit(EventMoved, d, nil)

	if arrived {
		log.Info().Str("session", s.id).Int("visited", len(s.visited)).Msg("arrived at target")
		s.emit(EventArrived, d, nil)
		if s.opts.EndOnArrival {
			s.state = Finished
		}
	}
	return &Report{Kind: Moved, Command: string(d), Direction: d, Current: next,
		DistanceKm: dist, Arrived: arrived}, nil
}

// Info reports the current city with the last measured distance and the
// bearing to the target. It never changes the session.
func (s *Session) Info() *Report {
	return &Report{
		Kind:       Info,
		Command:    "info",
		Current:    s.current,
		DistanceKm: s.distanceKm,
		Bearing:    geodesy.BearingDegrees(s.current.Point(), s.target.Point()),
	}
}

func (s *Session) emit(typ string, d geodesy.Direction, err error) {
	evt := Event{
		SessionID:  s.id,
		Type:       typ,
		Direction:  d,
		CityID:     s.current.ID,
		CityName:   s.current.Name,
		DistanceKm: s.distanceKm,
		Visited:    len(s.visited),
		At:         time.Now(),
	}
	if err != nil {
		evt.Error = err.Error()
	}
	s.opts.Observer.Observe(evt)
}
