package arcgis

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/region"
)

type pointGeometry struct {
	GeometryType string `json:"geometryType"`
	Geometry     struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"geometry"`
}

func pointJSON(p orb.Point) (string, error) {
	g := pointGeometry{GeometryType: "esriGeometryPoint"}
	g.Geometry.X = p.Lon()
	g.Geometry.Y = p.Lat()
	b, err := json.Marshal(g)
	return string(b), err
}

// Distance measures between two WGS84 points on the geometry service.
func (c *Client) Distance(ctx context.Context, a, b orb.Point, unit backend.Unit, geodesic bool) (float64, error) {
	if c.geometryURL == "" {
		return 0, backend.QueryErrorf("no geometry service configured")
	}
	g1, err := pointJSON(a)
	if err != nil {
		return 0, err
	}
	g2, err := pointJSON(b)
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("geometry1", g1)
	q.Set("geometry2", g2)
	q.Set("sr", strconv.Itoa(region.WGS84))
	q.Set("distanceUnit", strconv.Itoa(int(unit)))
	q.Set("geodesic", strconv.FormatBool(geodesic))

	res, err := c.get(ctx, "distance", c.geometryURL+"/distance", q, nil)
	if err != nil {
		return 0, err
	}
	d, err := requireNumber("distance", res.Get("distance"), "distance")
	if err != nil {
		return 0, err
	}
	return d.Float(), nil
}
