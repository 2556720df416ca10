// Command previewd runs the preview player core against a storyboard
// loaded from a YAML config file, advancing automatically from one clip
// to the next and exposing play/pause/seek/reset over MQTT. Grounded on
// References/orion-prototipe/cmd/oriond/main.go's
// flags-logger-signal-handling-graceful-shutdown shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/visiona/previewplayer/internal/audioplayer"
	audioplayergst "github.com/visiona/previewplayer/internal/audioplayer/gst"
	"github.com/visiona/previewplayer/internal/config"
	"github.com/visiona/previewplayer/internal/control"
	"github.com/visiona/previewplayer/internal/eventqueue"
	"github.com/visiona/previewplayer/internal/preview"
	"github.com/visiona/previewplayer/internal/render"
)

const defaultConfigPath = "config/previewd.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("starting previewd", "config", *configPath, "debug", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	d, err := newDaemon(cfg)
	if err != nil {
		slog.Error("failed to initialize previewd", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() { errChan <- d.run(ctx) }()

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			slog.Error("daemon error", "error", err)
		} else {
			slog.Info("daemon stopped (via MQTT shutdown command)")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutS)*time.Second)
	defer shutdownCancel()
	if err := d.shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("previewd stopped successfully")
}

// daemon wires one Controller to the storyboard's ordered clip list,
// advancing to the next clip whenever the current one reports playback
// complete, and exposes the MQTT control plane over it.
type daemon struct {
	cfg *config.Config

	queue      *eventqueue.Queue
	controller *preview.Controller
	mqttClient mqtt.Client
	handler    *control.Handler

	mu        sync.Mutex
	clipIndex int
	done      chan struct{}
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	queue := eventqueue.New()

	audioBackend, err := audioplayergst.New(cfg.AudioOut.SampleRateHz, cfg.AudioOut.Channels, nil)
	if err != nil {
		return nil, fmt.Errorf("previewd: create audio player: %w", err)
	}
	audioHandle := audioplayer.NewHandle(audioBackend)

	width, height := 1280, 720
	if len(cfg.Storyboard) > 0 && cfg.Storyboard[0].Width > 0 {
		width, height = cfg.Storyboard[0].Width, cfg.Storyboard[0].Height
	}
	renderer := render.NewCompositor(width, height)

	factory := preview.NewDefaultSourceFactory(cfg.AudioOut.SampleRateHz, cfg.AudioOut.Channels)

	d := &daemon{cfg: cfg, queue: queue, done: make(chan struct{}, 1)}

	player := preview.New(queue, audioHandle, renderer, factory, preview.ListenerFunc(d.onNotification))
	d.controller = preview.NewController(player)
	d.controller.SetAudioPlayer(audioHandle)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(fmt.Sprintf("previewd-%s", cfg.InstanceID))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		slog.Info("mqtt connection established", "broker", cfg.MQTT.Broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost, will auto-reconnect", "error", err)
	}
	d.mqttClient = mqtt.NewClient(opts)

	token := d.mqttClient.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("previewd: connect to mqtt broker: timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("previewd: connect to mqtt broker: %w", err)
	}

	d.handler = control.NewHandler(cfg, d.mqttClient, control.CommandCallbacks{
		OnGetStatus:     d.getStatus,
		OnSetDataSource: d.loadClip,
		OnPlay:          d.controller.Play,
		OnPause:         d.controller.Pause,
		OnSeekTo:        d.controller.SeekTo,
		OnReset:         d.controller.Reset,
		OnShutdown:      func() error { d.done <- struct{}{}; return nil },
	})

	return d, nil
}

// run starts the event queue, the control plane, loads the first clip,
// and blocks until ctx is cancelled or a shutdown command arrives.
func (d *daemon) run(ctx context.Context) error {
	d.queue.Start(ctx)
	if err := d.handler.Start(ctx); err != nil {
		return fmt.Errorf("previewd: start control plane: %w", err)
	}
	if err := d.loadClip(0); err != nil {
		return fmt.Errorf("previewd: load first clip: %w", err)
	}
	if err := d.controller.Play(); err != nil {
		return fmt.Errorf("previewd: play first clip: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-d.done:
		return nil
	}
}

func (d *daemon) shutdown(ctx context.Context) error {
	_ = d.handler.Stop()
	_ = d.controller.Reset()
	d.queue.Stop()
	if d.mqttClient != nil && d.mqttClient.IsConnected() {
		d.mqttClient.Disconnect(250)
	}
	return nil
}

// loadClip sets the data source to storyboard[idx] and remembers it as the
// current clip, so onNotification's playback-complete handler knows what
// comes next.
func (d *daemon) loadClip(idx int) error {
	d.mu.Lock()
	if idx < 0 || idx >= len(d.cfg.Storyboard) {
		d.mu.Unlock()
		return fmt.Errorf("previewd: clip index %d out of range", idx)
	}
	clipCfg := d.cfg.Storyboard[idx]
	d.clipIndex = idx
	d.mu.Unlock()

	mode, err := clipCfg.RenderMode()
	if err != nil {
		return err
	}
	clip := preview.ClipContext{
		URI:                            clipCfg.URI,
		BeginCutMs:                     clipCfg.BeginCutMs,
		EndCutMs:                       clipCfg.EndCutMs,
		StoryboardOffsetMs:             clipCfg.StoryboardOffsetMs,
		Width:                          clipCfg.Width,
		Height:                         clipCfg.Height,
		Mode:                           mode,
		ProgressCallbackIntervalFrames: clipCfg.ProgressCallbackIntervalFrames,
	}
	if err := d.controller.SetDataSource(clip); err != nil {
		return err
	}

	effects := make([]preview.EffectDescriptor, 0, len(clipCfg.Effects))
	for _, e := range clipCfg.Effects {
		kind, err := e.EffectKind()
		if err != nil {
			return err
		}
		effects = append(effects, preview.EffectDescriptor{Kind: kind, StartMs: e.StartMs, DurationMs: e.DurationMs})
	}
	d.controller.LoadEffectsSettings(effects)
	d.controller.LoadAudioMixSettings(preview.AudioMixContext{
		PCMHandle:      clipCfg.AudioMix.PCMHandle,
		StoryboardTsMs: clipCfg.AudioMix.StoryboardTsMs,
		BeginCutMs:     clipCfg.AudioMix.BeginCutMs,
		PrimaryVolume:  clipCfg.AudioMix.PrimaryVolume,
	})

	return d.controller.PrepareAsync()
}

func (d *daemon) getStatus() map[string]interface{} {
	d.mu.Lock()
	idx := d.clipIndex
	d.mu.Unlock()
	return map[string]interface{}{
		"clip_index":        idx,
		"storyboard_length": len(d.cfg.Storyboard),
		"last_rendered_ms":  d.controller.LastRenderedTimeMs(),
	}
}

// onNotification advances to the next storyboard clip on playback
// completion, and logs everything else — the MQTT status topic carries
// the richer, command-correlated responses via control.Handler.
func (d *daemon) onNotification(n preview.Notification) {
	switch n.Code {
	case preview.MediaPlaybackComplete:
		d.mu.Lock()
		next := d.clipIndex + 1
		d.mu.Unlock()
		if next >= len(d.cfg.Storyboard) {
			slog.Info("storyboard finished")
			return
		}
		if err := d.loadClip(next); err != nil {
			slog.Error("failed to load next clip", "error", err)
			return
		}
		if err := d.controller.Play(); err != nil {
			slog.Error("failed to play next clip", "error", err)
		}
	case preview.MediaError:
		slog.Error("player reported an error", "code", n.ErrorCode)
	case preview.NotifyStartNextPlayer:
		slog.Debug("prefetch window reached")
	default:
		slog.Debug("player notification", "code", n.Code)
	}
}
