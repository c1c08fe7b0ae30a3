package arcgis

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
)

// idFields are tried in order. Analysis output layers carry the source id
// in ORIG_FID and a fresh FID of their own.
var idFields = []string{"ORIG_FID", "FID", "fid"}

// parseBody validates a JSON response and turns an error document into a
// *backend.ServiceError.
func parseBody(op string, body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, backend.QueryErrorf("%s: response is not valid JSON", op)
	}
	res := gjson.ParseBytes(body)
	if e := res.Get("error"); e.Exists() {
		se := &backend.ServiceError{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("message").String(),
		}
		for _, d := range e.Get("details").Array() {
			if d.String() != "" {
				se.Details = append(se.Details, d.String())
			}
		}
		return gjson.Result{}, se
	}
	return res, nil
}

// attr looks up an attribute by any of names, ignoring case.
func attr(obj gjson.Result, names ...string) gjson.Result {
	for _, name := range names {
		if r := obj.Get(name); r.Exists() {
			return r
		}
	}
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		for _, name := range names {
			if strings.EqualFold(k.String(), name) {
				found = v
				return false
			}
		}
		return true
	})
	return found
}

func requireNumber(op string, r gjson.Result, field string) (gjson.Result, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return r, backend.QueryErrorf("%s: missing %s", op, field)
	}
	if r.Type != gjson.Number {
		return r, backend.QueryErrorf("%s: %s is %s, not a number", op, field, r.Type)
	}
	return r, nil
}

// parseCity reads a city from a feature's attributes.
func parseCity(op string, attrs gjson.Result) (city.City, error) {
	if !attrs.IsObject() {
		return city.City{}, backend.QueryErrorf("%s: feature has no attributes", op)
	}
	id, err := requireNumber(op, attr(attrs, idFields...), "feature id")
	if err != nil {
		return city.City{}, err
	}
	lat, err := requireNumber(op, attr(attrs, "lat"), "lat")
	if err != nil {
		return city.City{}, err
	}
	lng, err := requireNumber(op, attr(attrs, "lng"), "lng")
	if err != nil {
		return city.City{}, err
	}
	c := city.City{
		ID:        id.Int(),
		Name:      attr(attrs, "city").String(),
		AdminName: attr(attrs, "admin_name").String(),
		Country:   attr(attrs, "country").String(),
		Lat:       lat.Float(),
		Lng:       lng.Float(),
	}
	if c.Name == "" {
		return city.City{}, backend.QueryErrorf("%s: feature %d has no city name", op, c.ID)
	}
	switch p := attr(attrs, backend.PopulationField); p.Type {
	case gjson.Number:
		c.Population = p.Int()
		c.HasPopulation = c.Population >= 0
	default:
		log.Debug().Int64("fid", c.ID).Str("city", c.Name).Msg("population is null")
	}
	return c, nil
}

// parseFeatures reads every feature under path.
func parseFeatures(op string, res gjson.Result, path string) ([]city.City, error) {
	features := res.Get(path)
	if !features.IsArray() {
		return nil, backend.QueryErrorf("%s: missing %s", op, path)
	}
	var cities []city.City
	for _, f := range features.Array() {
		c, err := parseCity(op, f.Get("attributes"))
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, nil
}
