// Package gst provides a real GStreamer-backed implementation of
// audioplayer.Player: an appsrc-fed pipeline (appsrc ! audioconvert !
// audioresample ! autoaudiosink) driven by a feeder goroutine that pulls
// PCM from the configured audioplayer.Source and pushes it downstream,
// tracking the media clock as it goes. Grounded on the teacher's
// goroutine-plus-mutex-plus-atomic-counters worker shape throughout
// modules/stream-capture/internal/rtsp (feeder loop ~= OnNewSample's
// producer role, run under a context with a WaitGroup for shutdown) and
// on modules/stream-capture/internal/rtsp/pipeline.go for element wiring.
package gst

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/visiona/previewplayer/internal/audioplayer"
)

// Seeker is implemented by audioplayer.Source backends that support
// seeking their underlying read position (the real decoder-backed
// source does; dummy silent sources reset position to the seek target
// without needing real seek support).
type Seeker interface {
	SeekTo(targetUs int64) error
}

// Player is a GStreamer-backed audioplayer.Player.
type Player struct {
	mu sync.Mutex

	pipeline     *gst.Pipeline
	appsrc       *app.Source
	sampleRateHz int
	channels     int

	src      audioplayer.Source
	mix      audioplayer.MixSettings
	mixHandle string
	skim     audioplayer.StoryboardSkim
	listener audioplayer.Listener

	started  bool
	seeking  bool
	eosStatus audioplayer.EOSStatus
	mediaTimeUs int64 // atomic

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds (but does not start) an audio player pipeline targeting
// sampleRateHz/channels 16-bit PCM output.
func New(sampleRateHz, channels int, listener audioplayer.Listener) (*Player, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("audioplayer/gst: create pipeline: %w", err)
	}
	appsrc, err := app.NewAppSrc()
	if err != nil {
		return nil, fmt.Errorf("audioplayer/gst: create appsrc: %w", err)
	}
	capsStr := fmt.Sprintf("audio/x-raw,format=S16LE,rate=%d,channels=%d,layout=interleaved", sampleRateHz, channels)
	appsrc.SetCaps(gst.NewCapsFromString(capsStr))
	appsrc.SetProperty("format", int(gst.FormatTime))
	appsrc.SetProperty("is-live", true)

	audioconvert, err := gst.NewElement("audioconvert")
	if err != nil {
		return nil, fmt.Errorf("audioplayer/gst: create audioconvert: %w", err)
	}
	audioresample, err := gst.NewElement("audioresample")
	if err != nil {
		return nil, fmt.Errorf("audioplayer/gst: create audioresample: %w", err)
	}
	sink, err := gst.NewElement("autoaudiosink")
	if err != nil {
		return nil, fmt.Errorf("audioplayer/gst: create autoaudiosink: %w", err)
	}

	if err := pipeline.AddMany(appsrc.Element, audioconvert, audioresample, sink); err != nil {
		return nil, fmt.Errorf("audioplayer/gst: add elements: %w", err)
	}
	if err := gst.ElementLinkMany(appsrc.Element, audioconvert, audioresample, sink); err != nil {
		return nil, fmt.Errorf("audioplayer/gst: link elements: %w", err)
	}

	return &Player{
		pipeline:     pipeline,
		appsrc:       appsrc,
		sampleRateHz: sampleRateHz,
		channels:     channels,
		listener:     listener,
	}, nil
}

// SetSource implements audioplayer.Player.
func (p *Player) SetSource(src audioplayer.Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("audioplayer/gst: cannot swap source while running")
	}
	p.src = src
	return nil
}

// GetSource implements audioplayer.Player.
func (p *Player) GetSource() audioplayer.Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// SetAudioMixSettings implements audioplayer.Player.
func (p *Player) SetAudioMixSettings(settings audioplayer.MixSettings) {
	p.mu.Lock()
	p.mix = settings
	p.mu.Unlock()
}

// SetAudioMixPCMHandle implements audioplayer.Player.
func (p *Player) SetAudioMixPCMHandle(handle string) {
	p.mu.Lock()
	p.mixHandle = handle
	p.mu.Unlock()
}

// SetAudioMixStoryboardSkim implements audioplayer.Player.
func (p *Player) SetAudioMixStoryboardSkim(skim audioplayer.StoryboardSkim) {
	p.mu.Lock()
	p.skim = skim
	p.mu.Unlock()
}

// SetListener implements audioplayer.Player.
func (p *Player) SetListener(l audioplayer.Listener) {
	p.mu.Lock()
	p.listener = l
	p.mu.Unlock()
}

// Start implements audioplayer.Player.
func (p *Player) Start(sourceAlreadyStarted bool) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	if p.src == nil {
		p.mu.Unlock()
		return fmt.Errorf("audioplayer/gst: Start called with no source set")
	}
	if err := p.pipeline.SetState(gst.StatePlaying); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("audioplayer/gst: set state playing: %w", err)
	}
	p.started = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.feedLoop(ctx)
	return nil
}

// Pause implements audioplayer.Player.
func (p *Player) Pause(playPendingSamples bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.started = false
	if !playPendingSamples {
		if err := p.pipeline.SetState(gst.StatePaused); err != nil {
			return fmt.Errorf("audioplayer/gst: set state paused: %w", err)
		}
	}
	return nil
}

// Resume implements audioplayer.Player.
func (p *Player) Resume() error {
	return p.Start(true)
}

// SeekTo implements audioplayer.Player.
func (p *Player) SeekTo(targetUs int64) error {
	p.mu.Lock()
	src := p.src
	p.seeking = true
	p.mu.Unlock()

	if seeker, ok := src.(Seeker); ok {
		if err := seeker.SeekTo(targetUs); err != nil {
			p.mu.Lock()
			p.seeking = false
			p.mu.Unlock()
			return fmt.Errorf("audioplayer/gst: seek source: %w", err)
		}
	}
	atomic.StoreInt64(&p.mediaTimeUs, targetUs)

	p.mu.Lock()
	p.seeking = false
	listener := p.listener
	p.mu.Unlock()

	if listener != nil {
		listener.PostAudioSeekComplete()
	}
	return nil
}

// GetMediaTimeUs implements audioplayer.Player.
func (p *Player) GetMediaTimeUs() int64 {
	return atomic.LoadInt64(&p.mediaTimeUs)
}

// GetMediaTimeMapping implements audioplayer.Player.
func (p *Player) GetMediaTimeMapping() (realTimeUs, mediaTimeUs int64, ok bool) {
	media := atomic.LoadInt64(&p.mediaTimeUs)
	return time.Now().UnixMicro(), media, true
}

// ReachedEOS implements audioplayer.Player.
func (p *Player) ReachedEOS() audioplayer.EOSStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eosStatus
}

// IsSeeking implements audioplayer.Player.
func (p *Player) IsSeeking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seeking
}

// IsStarted implements audioplayer.Player.
func (p *Player) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// feedLoop pulls PCM from the configured source and pushes it into appsrc
// until the source reaches EOS or ctx is cancelled (Pause).
func (p *Player) feedLoop(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.mu.Lock()
		src := p.src
		p.mu.Unlock()
		if src == nil {
			return
		}

		data, ptsUs, ok, err := src.Read()
		if err != nil {
			slog.Error("audioplayer/gst: source read error", "error", err)
			p.setEOS(audioplayer.EOSStatus{AtEOS: false, Err: err})
			return
		}
		if !ok {
			p.setEOS(audioplayer.EOSStatus{AtEOS: true})
			if listener := p.currentListener(); listener != nil {
				listener.PostAudioEOS(0)
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		buf := gst.NewBufferFromBytes(data)
		buf.SetPresentationTimestamp(time.Duration(ptsUs) * time.Microsecond)
		if ret := p.appsrc.PushBuffer(buf); ret != gst.FlowOK {
			slog.Warn("audioplayer/gst: push buffer failed", "ret", ret)
		}
		atomic.StoreInt64(&p.mediaTimeUs, ptsUs)
	}
}

func (p *Player) setEOS(status audioplayer.EOSStatus) {
	p.mu.Lock()
	p.eosStatus = status
	p.mu.Unlock()
}

func (p *Player) currentListener() audioplayer.Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listener
}
