package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/game"
	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Config     string `help:"YAML config overlaid on the stock settings and level." type:"existingfile" short:"c"`
	Debug      bool   `help:"Whether to enable debug logging."`
	DumpConfig bool   `help:"Write the stock configuration to standard output and exit."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("heli-taxi"),
		kong.Description("fly passengers between landing pads"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}
	if CLI.DumpConfig {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		writeError(err)
	}

	g, err := game.New(cfg, log.Logger)
	if err != nil {
		writeError(err)
	}
	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Heli Taxi")
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(cfg.Game.TickRate)

	log.Info().
		Str("level", cfg.Level.Name).
		Int("tps", cfg.Game.TickRate).
		Msg("starting")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("game exited")
	}
}
