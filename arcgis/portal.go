package arcgis

import (
	"context"
	"net/url"
	"time"

	"github.com/domino14/wanderer/backend"
)

// Token is a short-lived credential issued by the portal.
type Token struct {
	Value   string
	Expires time.Time
	SSL     bool
}

// HelperServices are the utility services a portal is configured with.
type HelperServices struct {
	AnalysisURL string
	GeometryURL string
}

// Login generates a token for the user and starts using it.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	res, err := c.post(ctx, "generate token", c.portalURL+"/generateToken", form)
	if err != nil {
		return nil, err
	}
	tok := res.Get("token").String()
	if tok == "" {
		return nil, backend.QueryErrorf("generate token: no token in response")
	}
	t := &Token{
		Value: tok,
		SSL:   res.Get("ssl").Bool(),
	}
	if ms := res.Get("expires").Int(); ms > 0 {
		t.Expires = time.UnixMilli(ms)
	}
	c.token = tok
	return t, nil
}

// PortalSelf looks up the analysis and geometry services of the portal.
func (c *Client) PortalSelf(ctx context.Context) (HelperServices, error) {
	res, err := c.get(ctx, "portal self", c.portalURL+"/portals/self", nil, nil)
	if err != nil {
		return HelperServices{}, err
	}
	h := HelperServices{
		AnalysisURL: res.Get("helperServices.analysis.url").String(),
		GeometryURL: res.Get("helperServices.geometry.url").String(),
	}
	if h.AnalysisURL == "" {
		return HelperServices{}, backend.QueryErrorf("portal self: no analysis service")
	}
	if h.GeometryURL == "" {
		return HelperServices{}, backend.QueryErrorf("portal self: no geometry service")
	}
	return h, nil
}
