package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/player/chat"

	"github.com/oriumgames/riotwave/config"
	"github.com/oriumgames/riotwave/game"
)

func main() {
	path := flag.String("config", config.DefaultPath, "path of the game configuration")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	chat.Global.Subscribe(chat.StdoutSubscriber{})

	cfg, err := loadConfig(*path, log)
	if err != nil {
		log.Error("failed to load config", "path", *path, "err", err)
		os.Exit(1)
	}

	uc := server.DefaultConfig()
	uc.Server.Name = cfg.Server.Name
	uc.Network.Address = cfg.Server.Address
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("failed to build server config", "err", err)
		os.Exit(1)
	}

	srv := conf.New()
	srv.CloseOnProgramEnd()
	srv.Listen()

	g := game.New(cfg, log)
	<-srv.World().Exec(g.Populate)
	g.Start(srv.World())
	defer g.Shutdown()

	for p := range srv.Accept() {
		g.Join(p)
	}
}

// loadConfig reads the configuration at path, writing the defaults there
// first if no file exists yet.
func loadConfig(path string, log *slog.Logger) (*config.Game, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = config.Default()
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	log.Info("wrote default config", "path", path)
	return cfg, nil
}
