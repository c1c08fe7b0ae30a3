package arcgis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/domino14/wanderer/backend"
	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/region"
)

type spatialReference struct {
	WKID int `json:"wkid"`
}

type extentJSON struct {
	XMin             float64          `json:"xmin"`
	YMin             float64          `json:"ymin"`
	XMax             float64          `json:"xmax"`
	YMax             float64          `json:"ymax"`
	SpatialReference spatialReference `json:"spatialReference"`
}

type analysisContext struct {
	Extent extentJSON       `json:"extent"`
	OutSR  spatialReference `json:"outSR"`
}

func (c *Client) findNearestURL() (string, error) {
	if c.analysisURL == "" {
		return "", backend.QueryErrorf("no analysis service configured")
	}
	return c.analysisURL + "/FindNearest", nil
}

// SubmitFindNearest starts a straight-line find-nearest job over the
// analysis service, limited to extent.
func (c *Client) SubmitFindNearest(ctx context.Context, analysis, near backend.LayerFilter,
	extent region.Extent, maxCount int) (backend.Job, error) {

	base, err := c.findNearestURL()
	if err != nil {
		return backend.Job{}, err
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return backend.Job{}, err
	}
	nearJSON, err := json.Marshal(near)
	if err != nil {
		return backend.Job{}, err
	}
	ctxJSON, err := json.Marshal(analysisContext{
		Extent: extentJSON{
			XMin: extent.XMin, YMin: extent.YMin, XMax: extent.XMax, YMax: extent.YMax,
			SpatialReference: spatialReference{WKID: extent.WKID},
		},
		OutSR: spatialReference{WKID: region.WGS84},
	})
	if err != nil {
		return backend.Job{}, err
	}

	form := url.Values{}
	form.Set("analysisLayer", string(analysisJSON))
	form.Set("nearLayer", string(nearJSON))
	form.Set("measurementType", "StraightLine")
	form.Set("maxCount", strconv.Itoa(maxCount))
	form.Set("context", string(ctxJSON))

	res, err := c.post(ctx, "submit job", base+"/submitJob", form)
	if err != nil {
		return backend.Job{}, err
	}
	id := res.Get("jobId").String()
	if id == "" {
		return backend.Job{}, backend.QueryErrorf("submit job: no job id in response")
	}
	return backend.Job{ID: id, Status: backend.ParseJobStatus(res.Get("jobStatus").String())}, nil
}

// JobStatus reads the current status of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (backend.JobStatus, error) {
	base, err := c.findNearestURL()
	if err != nil {
		return backend.Unknown, err
	}
	header := http.Header{}
	header.Set("Cache-Control", "no-cache")
	res, err := c.get(ctx, "job status", base+"/jobs/"+url.PathEscape(jobID), nil, header)
	if err != nil {
		return backend.Unknown, err
	}
	s := res.Get("jobStatus")
	if !s.Exists() {
		return backend.Unknown, backend.QueryErrorf("job status: no jobStatus for job %s", jobID)
	}
	return backend.ParseJobStatus(s.String()), nil
}

// JobResult fetches the nearest city found by a succeeded job.
func (c *Client) JobResult(ctx context.Context, jobID string) (city.City, error) {
	base, err := c.findNearestURL()
	if err != nil {
		return city.City{}, err
	}
	res, err := c.get(ctx, "job result", base+"/jobs/"+url.PathEscape(jobID)+"/results/nearestLayer", nil, nil)
	if err != nil {
		return city.City{}, err
	}
	cities, err := parseFeatures("job result", res, "value.featureSet.features")
	if err != nil {
		return city.City{}, err
	}
	if len(cities) == 0 {
		return city.City{}, backend.QueryErrorf("job result: job %s found no city", jobID)
	}
	return cities[0], nil
}
