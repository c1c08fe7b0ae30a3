package savegame

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tidwall/gjson"

	"github.com/domino14/wanderer/arcgis"
)

type fakePortal struct {
	username string
	item     arcgis.Item
	err      error
}

func (f *fakePortal) AddItem(_ context.Context, username string, item arcgis.Item) (string, error) {
	f.username, f.item = username, item
	if f.err != nil {
		return "", f.err
	}
	return "item-1", nil
}

var savedAt = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func TestPortalSaver(t *testing.T) {
	is := is.New(t)
	p := &fakePortal{}
	id, err := NewPortalSaver(p).Save(context.Background(), Record{
		SessionID: "s1",
		Username:  "amy",
		Visited:   []int64{3, 17, 42},
		TargetID:  42,
		SavedAt:   savedAt,
	})
	is.NoErr(err)
	is.Equal(id, "item-1")
	is.Equal(p.username, "amy")
	is.Equal(p.item.Type, "Color Set")
	is.Equal(p.item.TypeKeywords, []string{"Wanderer game"})
	is.Equal(p.item.Title, "Wanderer 2024-03-09 14:30:00")
	is.Equal(gjson.Get(p.item.Text, "cities_visited").Raw, "[3,17,42]")
}

func TestPortalSaverNeedsUser(t *testing.T) {
	is := is.New(t)
	p := &fakePortal{}
	_, err := NewPortalSaver(p).Save(context.Background(), Record{SessionID: "s1"})
	is.True(err != nil)
	is.Equal(p.username, "")
}

func TestPortalSaverError(t *testing.T) {
	is := is.New(t)
	boom := errors.New("boom")
	_, err := NewPortalSaver(&fakePortal{err: boom}).Save(context.Background(),
		Record{SessionID: "s1", Username: "amy"})
	is.True(errors.Is(err, boom))
}

func TestArchive(t *testing.T) {
	is := is.New(t)
	a, err := OpenArchive(filepath.Join(t.TempDir(), "games.db"))
	is.NoErr(err)
	defer a.Close()

	ctx := context.Background()
	id1, err := a.Save(ctx, Record{SessionID: "s1", Visited: []int64{1, 2}, TargetID: 2, Arrived: true, SavedAt: savedAt})
	is.NoErr(err)
	id2, err := a.Save(ctx, Record{SessionID: "s2", Username: "amy", TargetID: 9, SavedAt: savedAt})
	is.NoErr(err)
	is.Equal(id1, "1")
	is.Equal(id2, "2")

	var rows []struct {
		SessionID string `db:"session_id"`
		Arrived   bool   `db:"arrived"`
		Visited   string `db:"visited_json"`
	}
	is.NoErr(a.db.SelectContext(ctx, &rows, "SELECT session_id, arrived, visited_json FROM games ORDER BY id"))
	is.Equal(len(rows), 2)
	is.Equal(rows[0].SessionID, "s1")
	is.True(rows[0].Arrived)
	is.Equal(rows[0].Visited, "[1,2]")
	is.Equal(rows[1].Visited, "[]")
}
