package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wanderer/arcgis"
	"github.com/domino14/wanderer/config"
	"github.com/domino14/wanderer/sampler"
	"github.com/domino14/wanderer/session"
)

const difficultyPrompt = "Level of difficulty (0 = easy, 1 = medium, 2 = hard, 3 = legendary):"

// ask reads one line with a temporary prompt.
func (sc *ShellController) ask(question string) (string, error) {
	sc.l.SetPrompt(question)
	defer sc.l.SetPrompt(prompt)
	line, err := sc.l.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// chooseDifficulty maps the player's answer to a number of cities. An
// answer that is not a known level gets the easy game.
func chooseDifficulty(answer string, eligible int) (sampler.Difficulty, int, bool) {
	d, ok := sampler.ParseDifficulty(answer)
	n := d.CityCount()
	if n == sampler.AllCities {
		n = eligible
	}
	return d, n, ok
}

// start logs in, finds the helper services and sets up the first game.
func (sc *ShellController) start() error {
	sc.showMessage("Wanderer " + sc.gitVersion)
	if sc.username == "" {
		u, err := sc.ask("ArcGIS Online username: ")
		if err != nil {
			return err
		}
		sc.username = u
	}
	if sc.username == "" {
		return errors.New("a user name is required")
	}
	pw, err := sc.l.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	if _, err := sc.client.Login(sc.ctx, sc.username, string(pw)); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	log.Info().Str("username", sc.username).Msg("logged in")

	var helpers arcgis.HelperServices
	var eligible int
	g, ctx := errgroup.WithContext(sc.ctx)
	g.Go(func() error {
		var err error
		helpers, err = sc.client.PortalSelf(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		eligible, err = sc.sampler.EligibleCount(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	sc.client.SetHelperServices(helpers)

	if err := sc.openSaver(); err != nil {
		return err
	}

	sc.showMessage(difficultyPrompt)
	answer, err := sc.ask("> ")
	if err != nil {
		return err
	}
	level, cityCount, ok := chooseDifficulty(answer, eligible)
	if !ok {
		sc.showMessage("Okay, then you get the default of 0 = easy.")
	}
	log.Debug().Stringer("difficulty", level).Int("city-count", cityCount).Msg("chose difficulty")
	return sc.newGame(sc.ctx, cityCount)
}

func (sc *ShellController) newGame(ctx context.Context, cityCount int) error {
	sc.showMessage(sc.printer.Sprintf("Let's play Wanderer with %d cities", cityCount))
	game, err := session.New(ctx, sc.sampler, sc.runner, sc.client, cityCount, session.Options{
		LayerURL:     sc.client.LayerURL(),
		EndOnArrival: sc.config.GetBool(config.ConfigEndOnArrival),
		Observer:     sc.observer,
	})
	if err != nil {
		return err
	}
	sc.game = game
	sc.showMessage(sc.printer.Sprintf("Minimum population: %d", game.MinPopulation()))
	sc.showMessage("Hey, Wanderer! Let's see if you can make it to the secret destination.")
	sc.showMessage(welcome(game.Current(), sc.intn))
	sc.showMessage(distanceLine(sc.printer, game.DistanceKm()))
	sc.showMessage(whatsNext)
	return nil
}
