// Package shell is the console host of the game: it logs the player in,
// sets up a session and feeds it one command per line.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"lukechampine.com/frand"

	"github.com/domino14/wanderer/arcgis"
	"github.com/domino14/wanderer/config"
	"github.com/domino14/wanderer/events"
	"github.com/domino14/wanderer/geodesy"
	"github.com/domino14/wanderer/nearest"
	"github.com/domino14/wanderer/sampler"
	"github.com/domino14/wanderer/savegame"
	"github.com/domino14/wanderer/session"
)

const prompt = "\033[32mwanderer>\033[0m "

var (
	errNoData    = errors.New("no data in line")
	errQuit      = errors.New("sending quit signal")
	errSavingOff = errors.New("saving is turned off")
	errNoGame    = errors.New("no game in progress")
)

type ShellController struct {
	l          *readline.Instance
	config     *config.Config
	execPath   string
	gitVersion string

	ctx    context.Context
	cancel context.CancelFunc

	client   *arcgis.Client
	sampler  *sampler.Sampler
	runner   *nearest.Runner
	saver    savegame.Saver
	archive  *savegame.Archive
	nc       *nats.Conn
	observer session.Observer

	username string
	game     *session.Session
	printer  *message.Printer
	intn     func(int) int
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd  string
	args []string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	return &shellcmd{cmd: strings.ToLower(fields[0]), args: fields[1:]}, nil
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := &ShellController{
		config:     cfg,
		execPath:   execPath,
		gitVersion: gitVersion,
		username:   cfg.GetString(config.ConfigUsername),
		printer:    message.NewPrinter(language.English),
		intn:       frand.Intn,
	}
	sc.ctx, sc.cancel = context.WithCancel(context.Background())

	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l

	sc.client = arcgis.NewClient(cfg.GetString(config.ConfigPortalURL),
		cfg.GetString(config.ConfigFeatureLayerURL),
		&http.Client{Timeout: cfg.GetDuration(config.ConfigHTTPTimeout)})
	sc.client.SetRetries(uint(cfg.GetInt(config.ConfigHTTPRetries)), 500*time.Millisecond)
	sc.sampler = sampler.New(sc.client, cfg.GetInt(config.ConfigSampleMaxRounds))
	sc.runner = nearest.NewRunner(sc.client, cfg.GetDuration(config.ConfigPollInterval))
	sc.runner.SetMaxUnknownPolls(cfg.GetInt(config.ConfigMaxUnknownPolls))

	if url := cfg.GetString(config.ConfigNatsURL); url != "" {
		nc, err := events.Connect(url)
		if err != nil {
			log.Warn().Err(err).Msg("game events will not be published")
		} else {
			sc.nc = nc
			sc.observer = events.NewPublisher(nc, cfg.GetString(config.ConfigNatsSubject))
		}
	}
	return sc
}

// openSaver sets up the configured place to save games.
func (sc *ShellController) openSaver() error {
	switch sc.config.GetString(config.ConfigSaveBackend) {
	case config.SaveBackendArcGIS:
		sc.saver = savegame.NewPortalSaver(sc.client)
	case config.SaveBackendSqlite:
		a, err := savegame.OpenArchive(sc.config.GetString(config.ConfigSqlitePath))
		if err != nil {
			return err
		}
		sc.archive = a
		sc.saver = a
	}
	return nil
}

func (sc *ShellController) standardModeSwitch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errQuit
	case "help":
		usage(sc.l.Stderr())
		return nil, nil
	case "save":
		return sc.save()
	}
	if sc.game == nil {
		return nil, errNoGame
	}
	if d, ok := geodesy.ParseDirection(cmd.cmd); ok && len(cmd.args) == 0 {
		sc.showMessage(fmt.Sprintf("You decide to travel %s.", d.Name()))
	}
	line := strings.Join(append([]string{cmd.cmd}, cmd.args...), " ")
	r, err := sc.game.Execute(sc.ctx, line)
	if errors.Is(err, session.ErrSessionOver) {
		return nil, errors.New("you have already reached your destination; save or exit")
	}
	if err != nil {
		return nil, err
	}
	if r.Kind == session.MoveFailed {
		log.Debug().Err(r.Err).Str("direction", string(r.Direction)).Msg("move failed")
	}
	out := renderReport(sc.printer, r, sc.intn)
	if r.Kind == session.Moved && !r.Arrived {
		out += "\n" + whatsNext
	}
	return msg(out), nil
}

func (sc *ShellController) save() (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if sc.saver == nil {
		return nil, errSavingOff
	}
	rec := savegame.Record{
		SessionID: sc.game.ID(),
		Username:  sc.username,
		Visited:   sc.game.Visited(),
		TargetID:  sc.game.Target().ID,
		Arrived:   sc.game.Current().ID == sc.game.Target().ID,
		SavedAt:   time.Now(),
	}
	id, err := sc.saver.Save(sc.ctx, rec)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", rec.SessionID).Str("saved-id", id).Int("visited", len(rec.Visited)).
		Msg("saved game")
	return msg("Successfully saved game " + id), nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	if err := sc.start(); err != nil {
		sc.showError(err)
		sig <- syscall.SIGINT
		return
	}

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		cmd, err := extractFields(line)
		if err == errNoData {
			continue
		} else if err != nil {
			sc.showError(err)
			continue
		}
		resp, err := sc.standardModeSwitch(cmd)
		if err == errQuit {
			sig <- syscall.SIGINT
			break
		} else if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	sc.cancel()
	if sc.nc != nil {
		if err := sc.nc.Drain(); err != nil {
			log.Err(err).Msg("failed to drain nats connection")
		}
	}
	if sc.archive != nil {
		if err := sc.archive.Close(); err != nil {
			log.Err(err).Msg("failed to close game archive")
		}
	}
}
