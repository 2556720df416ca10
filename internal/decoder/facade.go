package decoder

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Facade wraps a Decoder with the logging and trace-id assignment every
// call site in the player core expects, mirroring how
// modules/stream-capture/internal/rtsp/callbacks.go stamps every frame with
// a uuid trace id before it leaves the capture layer.
type Facade struct {
	name string
	dec  Decoder
	log  *slog.Logger
}

// New wraps dec in a Facade. name is used only for log attribution (e.g.
// "video", "audio").
func New(name string, dec Decoder) *Facade {
	return &Facade{
		name: name,
		dec:  dec,
		log:  slog.Default().With("component", "decoder", "track", name),
	}
}

// Start implements Decoder by delegating, with logging.
func (f *Facade) Start(ctx context.Context) error {
	if err := f.dec.Start(ctx); err != nil {
		f.log.Error("start failed", "error", err)
		return err
	}
	f.log.Debug("started", "decoder", f.dec.ComponentName())
	return nil
}

// Stop implements Decoder by delegating, with logging.
func (f *Facade) Stop() error {
	if err := f.dec.Stop(); err != nil {
		f.log.Warn("stop failed", "error", err)
		return err
	}
	return nil
}

// AwaitRelease implements Decoder by delegating.
func (f *Facade) AwaitRelease(ctx context.Context) error {
	return f.dec.AwaitRelease(ctx)
}

// Read implements Decoder, stamping a trace id onto every successfully
// decoded frame.
func (f *Facade) Read(opts ReadOptions) Result {
	res := f.dec.Read(opts)
	if res.Status == StatusOK && res.Frame != nil && res.Frame.TraceID == "" {
		res.Frame.TraceID = uuid.New().String()
	}
	if res.Status == StatusError {
		f.log.Error("read error", "error", res.Err)
	}
	return res
}

// GetFormat implements Decoder by delegating.
func (f *Facade) GetFormat() (Format, error) {
	return f.dec.GetFormat()
}

// ComponentName implements Decoder by delegating.
func (f *Facade) ComponentName() string {
	return f.dec.ComponentName()
}

// Unwrap returns the wrapped Decoder, for backends that need to expose
// extra capabilities beyond the Decoder interface (e.g. the gst backend's
// pipeline handle for the renderer's target window).
func (f *Facade) Unwrap() Decoder {
	return f.dec
}
