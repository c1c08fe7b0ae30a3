package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
)

const statisticField = "stat_value"

func (c *Client) query(ctx context.Context, op string, q url.Values) (gjson.Result, error) {
	return c.get(ctx, op, c.layerURL+"/query", q, nil)
}

// QueryByIDs fetches cities by feature id. Ids with no feature are simply
// missing from the result.
func (c *Client) QueryByIDs(ctx context.Context, ids []int64) ([]city.City, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("objectIds", strings.Join(lo.Map(ids, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	}), ","))
	q.Set("outFields", "*")
	q.Set("returnGeometry", "false")
	res, err := c.query(ctx, "query by id", q)
	if err != nil {
		return nil, err
	}
	return parseFeatures("query by id", res, "features")
}

// QueryRanked fetches limit cities matching where, sorted by orderBy and
// skipping the first offset.
func (c *Client) QueryRanked(ctx context.Context, where, orderBy string, offset, limit int) ([]city.City, error) {
	q := url.Values{}
	q.Set("where", where)
	q.Set("outFields", "*")
	q.Set("orderByFields", orderBy)
	q.Set("resultOffset", strconv.Itoa(offset))
	q.Set("resultRecordCount", strconv.Itoa(limit))
	q.Set("returnGeometry", "false")
	res, err := c.query(ctx, "ranked query", q)
	if err != nil {
		return nil, err
	}
	return parseFeatures("ranked query", res, "features")
}

type outStatistic struct {
	StatisticType         string `json:"statisticType"`
	OnStatisticField      string `json:"onStatisticField"`
	OutStatisticFieldName string `json:"outStatisticFieldName"`
}

// QueryStatistic computes stat over field for the features matching where.
// Counts use the count-only query.
func (c *Client) QueryStatistic(ctx context.Context, stat backend.Statistic, field, where string) (int64, error) {
	op := fmt.Sprintf("%s of %s", stat, field)
	q := url.Values{}
	q.Set("where", where)

	if stat == backend.StatCount {
		q.Set("returnCountOnly", "true")
		res, err := c.query(ctx, op, q)
		if err != nil {
			return 0, err
		}
		n, err := requireNumber(op, res.Get("count"), "count")
		if err != nil {
			return 0, err
		}
		return n.Int(), nil
	}

	stats, err := json.Marshal([]outStatistic{{
		StatisticType:         string(stat),
		OnStatisticField:      field,
		OutStatisticFieldName: statisticField,
	}})
	if err != nil {
		return 0, err
	}
	q.Set("outStatistics", string(stats))
	res, err := c.query(ctx, op, q)
	if err != nil {
		return 0, err
	}
	v, err := requireNumber(op, attr(res.Get("features.0.attributes"), statisticField), statisticField)
	if err != nil {
		return 0, err
	}
	return v.Int(), nil
}
