package arcgis

import (
	"context"
	"net/url"
	"strings"

	"github.com/domino14/wanderer/backend"
)

// Item is a content item to add to a user's folder.
type Item struct {
	Title        string
	Type         string
	TypeKeywords []string
	Tags         []string
	Text         string
}

// AddItem stores an item in the user's content and returns its id.
func (c *Client) AddItem(ctx context.Context, username string, item Item) (string, error) {
	form := url.Values{}
	form.Set("title", item.Title)
	form.Set("type", item.Type)
	form.Set("typeKeywords", strings.Join(item.TypeKeywords, ","))
	if len(item.Tags) > 0 {
		form.Set("tags", strings.Join(item.Tags, ","))
	}
	form.Set("text", item.Text)

	res, err := c.post(ctx, "add item",
		c.portalURL+"/content/users/"+url.PathEscape(username)+"/addItem", form)
	if err != nil {
		return "", err
	}
	if !res.Get("success").Bool() {
		return "", backend.QueryErrorf("add item: not successful: %s", res.Raw)
	}
	id := res.Get("id").String()
	if id == "" {
		return "", backend.QueryErrorf("add item: no item id in response")
	}
	return id, nil
}
