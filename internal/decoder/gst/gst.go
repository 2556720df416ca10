// Package gst provides real, GStreamer-backed implementations of
// internal/decoder.Decoder: one for video tracks (uridecodebin ->
// videoconvert -> videoscale -> capsfilter(RGB) -> appsink) and one for
// audio tracks (uridecodebin -> audioconvert -> audioresample ->
// capsfilter -> appsink). Structurally grounded on
// modules/stream-capture/internal/rtsp/pipeline.go's element-chain
// construction and modules/stream-capture/internal/rtsp/callbacks.go's
// dynamic-pad linking and appsink pull, generalized from RTSP capture to
// local-file decode and from one fixed chain to two (video/audio).
package gst

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
)

// linkOnPadAdded wires decodebin's dynamic output pad to sink's static
// "sink" pad once decodebin has determined the stream's actual format.
// Generalized from rtsp/callbacks.go's OnPadAdded, which did the same for
// rtspsrc's dynamic pad.
func linkOnPadAdded(decodebin *gst.Element, sink *gst.Element) {
	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		sinkPad := sink.GetStaticPad("sink")
		if sinkPad == nil {
			slog.Error("decoder/gst: sink element has no static sink pad", "element", sink.GetName())
			return
		}
		if sinkPad.IsLinked() {
			return
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			slog.Error("decoder/gst: failed to link decodebin pad",
				"src_pad", srcPad.GetName(), "sink_pad", sinkPad.GetName(), "ret", ret)
		}
	})
}

// newDecodebinSource builds the uridecodebin head common to both the video
// and audio backends.
func newDecodebinSource(uri string) (pipeline *gst.Pipeline, decodebin *gst.Element, err error) {
	gst.Init(nil)

	pipeline, err = gst.NewPipeline("")
	if err != nil {
		return nil, nil, fmt.Errorf("decoder/gst: create pipeline: %w", err)
	}

	src, err := gst.NewElement("uridecodebin")
	if err != nil {
		return nil, nil, fmt.Errorf("decoder/gst: create uridecodebin: %w", err)
	}
	src.SetProperty("uri", uri)

	if err := pipeline.Add(src); err != nil {
		return nil, nil, fmt.Errorf("decoder/gst: add uridecodebin: %w", err)
	}
	return pipeline, src, nil
}

// pipelineState is the small mutex-guarded lifecycle both backends share:
// started/stopped flags plus the release-completion signal AwaitRelease
// waits on. Mirrors the teacher's own small-state-struct-plus-mutex shape
// used throughout modules/stream-capture.
type pipelineState struct {
	mu       sync.Mutex
	pipeline *gst.Pipeline
	started  bool
	released chan struct{}
}

func newPipelineState(p *gst.Pipeline) *pipelineState {
	return &pipelineState{pipeline: p, released: make(chan struct{}, 1)}
}

func (s *pipelineState) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := s.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("decoder/gst: set state playing: %w", err)
	}
	s.started = true
	return nil
}

func (s *pipelineState) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	err := s.pipeline.SetState(gst.StateNull)
	s.started = false
	select {
	case s.released <- struct{}{}:
	default:
	}
	if err != nil {
		return fmt.Errorf("decoder/gst: set state null: %w", err)
	}
	return nil
}
