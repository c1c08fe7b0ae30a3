package geodesy

import (
	"context"
	"math"

	"github.com/paulmach/orb"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
)

// Measurer computes distances on the backend geometry service.
type Measurer interface {
	Distance(ctx context.Context, a, b orb.Point, unit backend.Unit, geodesic bool) (float64, error)
}

// DistanceKm is the geodesic distance between two cities, as computed by the
// geometry service. The service result is authoritative; nothing is computed
// locally.
func DistanceKm(ctx context.Context, m Measurer, a, b city.City) (float64, error) {
	d, err := m.Distance(ctx, a.Point(), b.Point(), backend.Kilometer, true)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, backend.QueryErrorf("distance between %v and %v is %v", a, b, d)
	}
	return d, nil
}
