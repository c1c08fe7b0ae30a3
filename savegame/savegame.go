// Package savegame stores finished or abandoned games. Games are written
// out and never loaded back.
package savegame

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/domino14/wanderer/arcgis"
)

// Record is a game as it is saved.
type Record struct {
	SessionID string
	Username  string
	Visited   []int64
	TargetID  int64
	Arrived   bool
	SavedAt   time.Time
}

// Saver stores a record and returns an id for it.
type Saver interface {
	Save(ctx context.Context, rec Record) (string, error)
}

const (
	ItemType        = "Color Set"
	ItemTypeKeyword = "Wanderer game"
)

type itemText struct {
	CitiesVisited []int64 `json:"cities_visited"`
}

// ItemAdder adds content items to a portal user's folder.
type ItemAdder interface {
	AddItem(ctx context.Context, username string, item arcgis.Item) (string, error)
}

// PortalSaver saves games as items in the player's portal content.
type PortalSaver struct {
	portal ItemAdder
}

func NewPortalSaver(portal ItemAdder) *PortalSaver {
	return &PortalSaver{portal: portal}
}

func (p *PortalSaver) Save(ctx context.Context, rec Record) (string, error) {
	if strings.TrimSpace(rec.Username) == "" {
		return "", fmt.Errorf("cannot save game %s: no user name", rec.SessionID)
	}
	text, err := json.Marshal(itemText{CitiesVisited: nonNil(rec.Visited)})
	if err != nil {
		return "", err
	}
	id, err := p.portal.AddItem(ctx, rec.Username, arcgis.Item{
		Title:        fmt.Sprintf("Wanderer %s", rec.SavedAt.UTC().Format("2006-01-02 15:04:05")),
		Type:         ItemType,
		TypeKeywords: []string{ItemTypeKeyword},
		Tags:         []string{"wanderer", rec.SessionID},
		Text:         string(text),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save game to portal: %w", err)
	}
	return id, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
