// Package control implements the MQTT remote-control plane a previewd
// process exposes over its Controller: play/pause/seek/reset commands in,
// a status/ack response out. Grounded on
// References/orion-prototipe/internal/control/handler.go's
// Command/Response/CommandCallbacks/messageHandler/processCommands shape,
// narrowed from that package's full inference/broadcast/ROI command set
// down to the playback-control vocabulary this module's Controller (§4.10)
// actually exposes.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/visiona/previewplayer/internal/config"
)

// Command is one control-plane request.
type Command struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Response is the command's acknowledgement, published back on the status
// topic.
type Response struct {
	CommandAck string                 `json:"command_ack"`
	Status     string                 `json:"status"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Timestamp  string                 `json:"timestamp"`
}

// CommandCallbacks wires control-plane commands to a Controller instance.
type CommandCallbacks struct {
	OnGetStatus    func() map[string]interface{}
	OnSetDataSource func(clipIndex int) error
	OnPlay         func() error
	OnPause        func() error
	OnSeekTo       func(targetUs int64) error
	OnReset        func() error
	OnShutdown     func() error
}

// Handler subscribes to the configured control topic and dispatches
// incoming commands to CommandCallbacks, publishing a Response for each.
type Handler struct {
	cfg      *config.Config
	client   mqtt.Client
	commands chan Command

	mu        sync.RWMutex
	callbacks CommandCallbacks
}

// NewHandler creates a control-plane handler bound to client.
func NewHandler(cfg *config.Config, client mqtt.Client, callbacks CommandCallbacks) *Handler {
	return &Handler{
		cfg:       cfg,
		client:    client,
		commands:  make(chan Command, 10),
		callbacks: callbacks,
	}
}

// Start subscribes to the control topic and begins dispatching commands.
func (h *Handler) Start(ctx context.Context) error {
	topic := h.cfg.MQTT.Topics.Control
	qos := h.cfg.MQTT.QoS["control"]

	slog.Info("subscribing to control plane", "topic", topic, "qos", qos)
	token := h.client.Subscribe(topic, qos, h.messageHandler)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("control: subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("control: subscription failed: %w", err)
	}

	go h.processCommands(ctx)
	slog.Info("control plane handler started")
	return nil
}

// Stop unsubscribes and drains the command queue.
func (h *Handler) Stop() error {
	topic := h.cfg.MQTT.Topics.Control
	if h.client != nil && h.client.IsConnected() {
		h.client.Unsubscribe(topic).Wait()
	}
	close(h.commands)
	slog.Info("control plane handler stopped")
	return nil
}

func (h *Handler) messageHandler(client mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		slog.Error("failed to parse control command", "error", err)
		h.publish(Response{CommandAck: "unknown", Status: "error", Error: "invalid JSON"})
		return
	}
	slog.Info("control command received", "command", cmd.Command)
	select {
	case h.commands <- cmd:
	default:
		slog.Warn("command queue full, dropping command", "command", cmd.Command)
	}
}

func (h *Handler) processCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-h.commands:
			if !ok {
				return
			}
			h.handleCommand(cmd)
		}
	}
}

func (h *Handler) handleCommand(cmd Command) {
	h.mu.RLock()
	cb := h.callbacks
	h.mu.RUnlock()

	resp := Response{CommandAck: cmd.Command}

	switch cmd.Command {
	case "get_status":
		if cb.OnGetStatus == nil {
			resp.Status, resp.Error = "error", "get_status not implemented"
			break
		}
		resp.Status = "success"
		resp.Data = cb.OnGetStatus()

	case "set_data_source":
		if cb.OnSetDataSource == nil {
			resp.Status, resp.Error = "error", "set_data_source not implemented"
			break
		}
		idx, ok := cmd.Params["clip_index"].(float64)
		if !ok {
			resp.Status, resp.Error = "error", "missing or invalid 'clip_index' parameter"
			break
		}
		if err := cb.OnSetDataSource(int(idx)); err != nil {
			resp.Status, resp.Error = "error", err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{"clip_index": int(idx)}

	case "play":
		resp.Status, resp.Error = runSimple(cb.OnPlay, "play")

	case "pause":
		resp.Status, resp.Error = runSimple(cb.OnPause, "pause")

	case "reset":
		resp.Status, resp.Error = runSimple(cb.OnReset, "reset")

	case "seek_to":
		if cb.OnSeekTo == nil {
			resp.Status, resp.Error = "error", "seek_to not implemented"
			break
		}
		targetUs, ok := cmd.Params["target_us"].(float64)
		if !ok {
			resp.Status, resp.Error = "error", "missing or invalid 'target_us' parameter"
			break
		}
		if err := cb.OnSeekTo(int64(targetUs)); err != nil {
			resp.Status, resp.Error = "error", err.Error()
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{"target_us": int64(targetUs)}

	case "shutdown":
		if cb.OnShutdown == nil {
			resp.Status, resp.Error = "error", "shutdown not implemented"
			break
		}
		resp.Status = "success"
		resp.Data = map[string]interface{}{"shutdown_initiated": true}
		h.publish(resp)
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := cb.OnShutdown(); err != nil {
				slog.Error("shutdown callback failed", "error", err)
			}
		}()
		return

	default:
		resp.Status = "error"
		resp.Error = fmt.Sprintf("unknown command: %s", cmd.Command)
	}

	h.publish(resp)
}

// runSimple runs a zero-argument callback and reports the status/error
// pair handleCommand's switch arms for play/pause/reset all share.
func runSimple(fn func() error, name string) (status, errMsg string) {
	if fn == nil {
		return "error", name + " not implemented"
	}
	if err := fn(); err != nil {
		return "error", err.Error()
	}
	return "success", ""
}

func (h *Handler) publish(resp Response) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		return
	}
	topic := h.cfg.MQTT.Topics.Status
	qos := h.cfg.MQTT.QoS["status"]
	token := h.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		slog.Error("response publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("failed to publish response", "error", err)
	}
}
