package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/visiona/previewplayer/internal/audioplayer"
	"github.com/visiona/previewplayer/internal/clock"
	"github.com/visiona/previewplayer/internal/decoder"
	"github.com/visiona/previewplayer/internal/eventqueue"
	"github.com/visiona/previewplayer/internal/render"
)

// lateDropThresholdUs and earlyWaitThresholdUs are the AV-sync thresholds
// from §4.8 step 9.
const (
	lateDropThresholdUs  = 40_000
	earlyWaitThresholdUs = -25_000
	earlyRepostDelay     = 25 * time.Millisecond
	stillImageFrameDelay = 33 * time.Millisecond
	prefetchWindowUs     = 1_500_000
)

// Sources groups the decoder-level collaborators a clip is prepared
// against; set by prepareAsyncEvent once the data source is opened.
type sources struct {
	video decoder.Decoder
	audio decoder.Decoder
}

// Player is the single-clip preview player core (C7/C8/C9).
type Player struct {
	mu   sync.Mutex
	cond *sync.Cond

	miscMu sync.Mutex // guards duration discovery, independent of mu per §5

	state bitset
	seek  seekState
	// finishingSeek is set for the one video event tick in which a seek
	// completes, forcing lateness to 0 for that frame per §4.8 step 9.
	finishingSeek bool

	clip     ClipContext
	effects  []EffectDescriptor
	audioMix AudioMixContext

	src     sources
	factory SourceFactory

	audioHandle     *audioplayer.Handle
	audioOwnerToken int64

	renderer render.RenderInput

	sysClock    clock.Source
	audioBridge *clock.AudioBridge
	deltaUs     int64

	queue             *eventqueue.Queue
	videoEventID      eventqueue.ID
	videoEventPending bool
	prepareEventID    eventqueue.ID

	listener Listener

	videoTimeUs        int64
	durationUs         int64
	lastRenderedTimeMs int64
	heldFrame          *decoder.Frame

	framingSignalled  bool
	framingEffectIdx  int
	progressFrameSeen int
	notifiedStartNext bool

	ctx    context.Context
	cancel context.CancelFunc

	log *slog.Logger
}

// New creates a Player bound to the given event queue, shared audio
// player handle, renderer, and listener. The queue must already be
// started by the caller (typically one queue is shared by the
// controller across successive clips' players).
func New(queue *eventqueue.Queue, audioHandle *audioplayer.Handle, renderer render.RenderInput, factory SourceFactory, listener Listener) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		audioHandle: audioHandle,
		renderer:    renderer,
		factory:     factory,
		sysClock:    clock.NewSystem(),
		audioBridge: clock.NewAudioBridge(nil),
		queue:       queue,
		listener:    listener,
		ctx:         ctx,
		cancel:      cancel,
		log:         slog.Default().With("component", "preview"),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *Player) notify(n Notification) {
	if p.listener == nil {
		return
	}
	p.listener.Notify(n)
}

func (p *Player) notifyError(code int) {
	p.notify(Notification{Code: MediaError, ErrorCode: code})
}

// timeSourceNowUs picks the system clock once audio has reached EOS, otherwise
// the audio bridge — §4.2/§4.8 step 8.
func (p *Player) timeSourceNowUs() int64 {
	if p.state.has(FlagAudioAtEOS) {
		return p.sysClock.NowUs()
	}
	return p.audioBridge.NowUs()
}

func (p *Player) hasAudioSource() bool { return p.src.audio != nil }
func (p *Player) hasVideoSource() bool { return p.src.video != nil }

func (p *Player) setDurationUs(us int64) {
	p.miscMu.Lock()
	p.durationUs = us
	p.miscMu.Unlock()
}

func (p *Player) getDurationUs() int64 {
	p.miscMu.Lock()
	defer p.miscMu.Unlock()
	return p.durationUs
}

// releaseHeldFrame implements §3's "at most one in-flight frame" lifecycle
// rule: ownership of the frame buffer transfers to the renderer only for
// the duration of Render and is released immediately after.
func (p *Player) releaseHeldFrame() {
	p.heldFrame = nil
}

func fmtState(b bitset) string {
	return fmt.Sprintf("0x%x", b.bits)
}
