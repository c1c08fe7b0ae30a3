package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetDuration(ConfigPollInterval), 5*time.Second)
	is.Equal(c.GetInt(ConfigHTTPRetries), 3)
	is.Equal(c.GetInt(ConfigMaxUnknownPolls), 60)
	is.Equal(c.GetInt(ConfigSampleMaxRounds), 1000)
	is.Equal(c.GetBool(ConfigEndOnArrival), false)
	is.Equal(c.GetString(ConfigSaveBackend), SaveBackendArcGIS)
	is.Equal(c.GetString(ConfigNatsSubject), "wanderer.events")
}

func TestFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("WANDERER_NATS_URL", "nats://localhost:4222")
	t.Setenv("WANDERER_END_ON_ARRIVAL", "true")
	c := &Config{}
	is.NoErr(c.Load([]string{"--poll-interval", "2s", "--save-backend", "sqlite"}))
	is.Equal(c.GetDuration(ConfigPollInterval), 2*time.Second)
	is.Equal(c.GetString(ConfigSaveBackend), SaveBackendSqlite)
	is.Equal(c.GetString(ConfigNatsURL), "nats://localhost:4222")
	is.True(c.GetBool(ConfigEndOnArrival))
}

func TestConfigFile(t *testing.T) {
	is := is.New(t)
	f := filepath.Join(t.TempDir(), "wanderer.json")
	is.NoErr(os.WriteFile(f, []byte(`{"username":"amy","sample-max-rounds":50}`), 0o644))
	c := &Config{}
	is.NoErr(c.Load([]string{"--config", f}))
	is.Equal(c.GetString(ConfigUsername), "amy")
	is.Equal(c.GetInt(ConfigSampleMaxRounds), 50)
}

func TestBadSaveBackend(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.True(c.Load([]string{"--save-backend", "floppy"}) != nil)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--sqlite-path", "games.db"}))
	c.AdjustRelativePaths("/opt/wanderer")
	is.Equal(c.GetString(ConfigSqlitePath), "/opt/wanderer/games.db")
	is.Equal(c.GetString(ConfigHistoryFile), "/tmp/wanderer_readline.tmp")
}
