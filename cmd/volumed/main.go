package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/user/volumed/internal/alsa"
	"github.com/user/volumed/internal/config"
	"github.com/user/volumed/internal/mixer"
	"github.com/user/volumed/internal/monitor"
	"github.com/user/volumed/internal/server"
	"github.com/user/volumed/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "err", err)
		log.Print(config.HelpText())
		os.Exit(2)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}

	device := alsa.ResolveDevice(cfg.Device)
	m, err := mixer.Open(device, mixer.OpenerFunc(alsa.Open))
	if err != nil {
		log.Fatal("failed to open mixer", "device", device, "err", err)
	}
	log.Info("mixer ready",
		"device", device,
		"volume_controls", m.VolumeControlNames(),
		"mute_switch", m.HasPlaybackSwitch(),
	)

	hub := sse.NewHub()
	go hub.Run()

	mon, err := monitor.New(hub, cfg.StateFile)
	if err != nil {
		log.Fatal("failed to create state monitor", "err", err)
	}
	mon.Start()

	srv := server.New(cfg, hub, m)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Start()
	}()

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig)
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	mon.Stop()
	hub.Stop()
	if err := m.Close(); err != nil {
		log.Error("failed to close mixer", "err", err)
	}
	log.Info("volumed stopped")
}
