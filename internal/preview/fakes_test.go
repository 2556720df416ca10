package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/visiona/previewplayer/internal/audioplayer"
	"github.com/visiona/previewplayer/internal/decoder"
	"github.com/visiona/previewplayer/internal/eventqueue"
	"github.com/visiona/previewplayer/internal/render"
)

// fakeFrame is one entry a fakeDecoder serves. clockUs is the value the
// test wants the shared audio clock to read at the moment this frame is
// delivered — coupling decoder delivery to the fake audio player's clock
// lets a scenario force an exact lateness (0 for "on time", some offset
// for a deliberately early/late frame) without waiting on a real clock.
type fakeFrame struct {
	ptsUs   int64
	clockUs int64
}

// fakeDecoder is a minimal decoder.Decoder backing the S1-S6 scenario
// tests: it serves a fixed list of frames in order, honoring seek hints the
// same way a real extractor would (skip forward to the first frame at or
// after the target), and reports end-of-stream once exhausted.
type fakeDecoder struct {
	mu       sync.Mutex
	name     string
	frames   []fakeFrame
	idx      int
	setClock func(int64)
	stopped  bool
}

func (d *fakeDecoder) Start(ctx context.Context) error { return nil }

func (d *fakeDecoder) Stop() error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDecoder) AwaitRelease(ctx context.Context) error { return nil }

func (d *fakeDecoder) GetFormat() (decoder.Format, error) {
	return decoder.Format{ComponentName: d.name}, nil
}

func (d *fakeDecoder) ComponentName() string { return d.name }

func (d *fakeDecoder) Read(opts decoder.ReadOptions) decoder.Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if opts.SeekTargetUs != nil {
		target := *opts.SeekTargetUs
		for d.idx < len(d.frames) && d.frames[d.idx].ptsUs < target {
			d.idx++
		}
	}
	if d.idx >= len(d.frames) {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	}
	f := d.frames[d.idx]
	d.idx++
	if d.setClock != nil {
		d.setClock(f.clockUs)
	}
	return decoder.Result{
		Status:      decoder.StatusOK,
		Frame:       &decoder.Frame{PTSUs: f.ptsUs, Data: []byte{0}, RangeLength: 1},
	}
}

func (d *fakeDecoder) wasStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// fakeSourceFactory hands back preconfigured decoders instead of opening
// real GStreamer tracks, mirroring DefaultSourceFactory's contract.
type fakeSourceFactory struct {
	video, audio       decoder.Decoder
	videoErr, audioErr error
}

func (f *fakeSourceFactory) OpenVideo(ClipContext) (decoder.Decoder, error) { return f.video, f.videoErr }
func (f *fakeSourceFactory) OpenAudio(ClipContext) (decoder.Decoder, error) { return f.audio, f.audioErr }

// fakeAudioPlayer stands in for the shared cross-clip audio player
// (audioplayer.Player). Its media clock is driven explicitly by
// setMediaTimeUs rather than wall time, so scenario tests can force exact
// AV-sync outcomes deterministically.
type fakeAudioPlayer struct {
	mu             sync.Mutex
	mediaTimeUs    int64
	source         audioplayer.Source
	listener       audioplayer.Listener
	started        bool
	paused         bool
	setSourceCalls int
	seekCalls      []int64
	mix            audioplayer.MixSettings
	pcmHandle      string
	skim           audioplayer.StoryboardSkim
}

func newFakeAudioPlayer() *fakeAudioPlayer { return &fakeAudioPlayer{} }

func (a *fakeAudioPlayer) setMediaTimeUs(us int64) {
	a.mu.Lock()
	a.mediaTimeUs = us
	a.mu.Unlock()
}

func (a *fakeAudioPlayer) SetSource(src audioplayer.Source) error {
	a.mu.Lock()
	a.source = src
	a.setSourceCalls++
	a.mu.Unlock()
	return nil
}

func (a *fakeAudioPlayer) GetSource() audioplayer.Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

func (a *fakeAudioPlayer) SetAudioMixSettings(s audioplayer.MixSettings) {
	a.mu.Lock()
	a.mix = s
	a.mu.Unlock()
}

func (a *fakeAudioPlayer) SetAudioMixPCMHandle(h string) {
	a.mu.Lock()
	a.pcmHandle = h
	a.mu.Unlock()
}

func (a *fakeAudioPlayer) SetAudioMixStoryboardSkim(s audioplayer.StoryboardSkim) {
	a.mu.Lock()
	a.skim = s
	a.mu.Unlock()
}

func (a *fakeAudioPlayer) SetListener(l audioplayer.Listener) {
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()
}

func (a *fakeAudioPlayer) Start(sourceAlreadyStarted bool) error {
	a.mu.Lock()
	a.started = true
	a.paused = false
	a.mu.Unlock()
	return nil
}

func (a *fakeAudioPlayer) Pause(playPendingSamples bool) error {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
	return nil
}

func (a *fakeAudioPlayer) Resume() error {
	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()
	return nil
}

func (a *fakeAudioPlayer) SeekTo(targetUs int64) error {
	a.mu.Lock()
	a.seekCalls = append(a.seekCalls, targetUs)
	a.mu.Unlock()
	return nil
}

func (a *fakeAudioPlayer) GetMediaTimeUs() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mediaTimeUs
}

func (a *fakeAudioPlayer) GetMediaTimeMapping() (int64, int64, bool) { return 0, 0, false }
func (a *fakeAudioPlayer) ReachedEOS() audioplayer.EOSStatus         { return audioplayer.EOSStatus{} }
func (a *fakeAudioPlayer) IsSeeking() bool                           { return false }

func (a *fakeAudioPlayer) IsStarted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// renderedFrame records one call into fakeRenderer.Render.
type renderedFrame struct {
	ptsUs int64
	mask  render.EffectKind
}

// fakeRenderer implements render.RenderInput by recording calls instead of
// compositing anything.
type fakeRenderer struct {
	mu      sync.Mutex
	frames  []renderedFrame
	overlay *render.FramingOverlay
}

func (r *fakeRenderer) UpdateVideoSize(render.VideoSizeMeta) {}

func (r *fakeRenderer) TargetWindow() *render.TargetWindow { return &render.TargetWindow{} }

func (r *fakeRenderer) Render(frame *decoder.Frame, mask render.EffectKind, mode render.Mode, isStillImage bool) error {
	r.mu.Lock()
	r.frames = append(r.frames, renderedFrame{ptsUs: frame.PTSUs, mask: mask})
	r.mu.Unlock()
	return nil
}

func (r *fakeRenderer) SetFramingOverlay(overlay *render.FramingOverlay) {
	r.mu.Lock()
	r.overlay = overlay
	r.mu.Unlock()
}

func (r *fakeRenderer) snapshot() []renderedFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]renderedFrame, len(r.frames))
	copy(out, r.frames)
	return out
}

// fakeListener captures every notification delivered to it, in order.
type fakeListener struct {
	mu            sync.Mutex
	notifications []Notification
}

func (l *fakeListener) Notify(n Notification) {
	l.mu.Lock()
	l.notifications = append(l.notifications, n)
	l.mu.Unlock()
}

func (l *fakeListener) snapshot() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.notifications))
	copy(out, l.notifications)
	return out
}

func (l *fakeListener) count(code NotificationCode) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, note := range l.notifications {
		if note.Code == code {
			n++
		}
	}
	return n
}

// newTestPlayer wires a Player against fakes only: a real eventqueue.Queue
// (so the scheduling semantics under test are genuine), a fake shared
// audio player behind a real Handle, a recording renderer, and a
// recording listener. The queue is stopped automatically at test end.
func newTestPlayer(t *testing.T, factory SourceFactory) (*Player, *audioplayer.Handle, *fakeAudioPlayer, *fakeListener, *fakeRenderer) {
	t.Helper()
	queue := eventqueue.New()
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)

	audio := newFakeAudioPlayer()
	handle := audioplayer.NewHandle(audio)
	renderer := &fakeRenderer{}
	listener := &fakeListener{}

	p := New(queue, handle, renderer, factory, listener)
	p.audioBridge.SetProvider(handle)
	return p, handle, audio, listener, renderer
}

// newSharedPlayer wires a Player against a caller-supplied audio handle
// (and a queue started fresh per call, since the scenarios that need a
// shared handle don't care whether the queue is shared too), for tests
// modeling two successive clips' players handed the same shared audio
// player — §4.9's source-swap/glitch-avoidance rule.
func newSharedPlayer(t *testing.T, handle *audioplayer.Handle, factory SourceFactory) (*Player, *fakeListener, *fakeRenderer) {
	t.Helper()
	queue := eventqueue.New()
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)

	renderer := &fakeRenderer{}
	listener := &fakeListener{}
	p := New(queue, handle, renderer, factory, listener)
	p.audioBridge.SetProvider(handle)
	return p, listener, renderer
}

// waitUntil polls cond until it reports true or timeout elapses.
func waitUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}
