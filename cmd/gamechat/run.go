package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/petems/gamechat/internal/audio"
	"github.com/petems/gamechat/internal/chat"
	"github.com/petems/gamechat/internal/config"
	"github.com/petems/gamechat/internal/diag"
	"github.com/petems/gamechat/internal/logging"
	"github.com/petems/gamechat/internal/permissions"
	"github.com/petems/gamechat/internal/session"
	"github.com/petems/gamechat/internal/voice"
)

// RunCmd starts the voice daemon.
func RunCmd() *cobra.Command {
	var cfgFile string
	var target string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the voice daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgFile, target)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default: platform config directory)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "peer address (host:port), overrides the config file")

	return cmd
}

func run(cfgFile, targetOverride string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log := logging.NewWithLevel(cfg.Logging.Level)

	// Capture needs OS-level microphone approval; without it the engine
	// degrades to network-only rather than refusing to run.
	if err := permissions.EnsurePermissions(); err != nil {
		log.Warn().Err(err).Msg("Microphone permission not granted, capture may be unavailable")
	}

	host, err := audio.NewHost()
	if err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}
	defer host.Close()

	registry := prometheus.NewRegistry()
	engine, err := voice.New(voice.Config{
		BindAddr:        cfg.Voice.BindAddr,
		Host:            host,
		InputDevice:     cfg.Voice.InputDevice,
		OutputDevice:    cfg.Voice.OutputDevice,
		SampleRate:      cfg.Voice.SampleRate,
		Channels:        cfg.Voice.Channels,
		FramesPerBuffer: cfg.Voice.FramesPerBuffer,
		Logger:          log,
		Metrics:         voice.NewMetrics(registry),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	target := targetOverride
	if target == "" {
		target = cfg.Voice.Target
	}
	if target != "" {
		addr, err := net.ResolveUDPAddr("udp", target)
		if err != nil {
			return fmt.Errorf("resolve target %s: %w", target, err)
		}
		engine.SetTarget(addr)
	}

	if err := engine.Start(); err != nil {
		return err
	}

	log.Info().
		Str("local_addr", engine.LocalAddr().String()).
		Str("target", target).
		Msg("Voice engine running")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Diag.Enabled {
		srv := diag.New(cfg.Diag.Addr, engine, registry, log)
		g.Go(func() error {
			return srv.Serve(gctx)
		})
	}

	if cfg.Chat.Homeserver != "" {
		g.Go(func() error {
			return runChat(gctx, cfg, log)
		})
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	if _, err := os.Stat(cfgPath); err == nil {
		g.Go(func() error {
			return config.Watch(gctx, cfgPath, cfg, log, func(old, next *config.Config) {
				applyConfigChange(engine, log, old, next)
			})
		})
	}

	<-gctx.Done()

	log.Info().Msg("Shutting down...")
	engine.Stop()
	select {
	case <-engine.Done():
	case <-time.After(2 * time.Second):
		log.Warn().Msg("Voice engine did not wind down in time")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyConfigChange retargets the engine when the config file's voice target
// changes. Other fields take effect on the next start.
func applyConfigChange(engine *voice.Engine, log zerolog.Logger, old, next *config.Config) {
	if old.Voice.Target == next.Voice.Target {
		return
	}

	if next.Voice.Target == "" {
		engine.SetTarget(nil)
		log.Info().Msg("Voice target cleared")
		return
	}

	addr, err := net.ResolveUDPAddr("udp", next.Voice.Target)
	if err != nil {
		log.Warn().Err(err).Str("target", next.Voice.Target).Msg("Ignoring unresolvable voice target")
		return
	}

	engine.SetTarget(addr)
	log.Info().Str("target", next.Voice.Target).Msg("Voice target updated")
}

// runChat logs in with env credentials, remembers the session, and mirrors
// room messages into the log until the context ends. Chat failures never
// propagate: the daemon keeps running voice-only.
func runChat(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	username := os.Getenv("GAMECHAT_USERNAME")
	password := os.Getenv("GAMECHAT_PASSWORD")
	if username == "" {
		username = cfg.Chat.User
	}
	if username == "" || password == "" {
		log.Info().Msg("No chat credentials, text chat disabled")
		return nil
	}

	client, err := chat.NewClient(cfg.Chat.Homeserver, log)
	if err != nil {
		log.Warn().Err(err).Msg("Chat unavailable, continuing voice-only")
		return nil
	}
	if err := client.Login(ctx, username, password); err != nil {
		log.Warn().Err(err).Msg("Chat login failed, continuing voice-only")
		return nil
	}

	store := session.NewStore("")
	if err := store.Save(session.Session{
		UserID:      client.UserID(),
		DisplayName: username,
		Homeserver:  client.Homeserver(),
		AccessToken: client.AccessToken(),
		DeviceID:    client.DeviceID(),
	}); err != nil {
		log.Warn().Err(err).Msg("Could not remember session")
	}

	client.OnMessage(func(roomID string, msg chat.Message) {
		if cfg.Chat.Room != "" && roomID != cfg.Chat.Room {
			return
		}
		log.Info().Str("room", roomID).Str("sender", msg.Sender).Msg(msg.Content)
	})

	log.Info().Str("user_id", client.UserID()).Msg("Chat connected")
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("Chat sync ended, continuing voice-only")
	}
	return nil
}
