package gst

import (
	"context"
	"fmt"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/visiona/previewplayer/internal/decoder"
	"github.com/visiona/previewplayer/internal/gstpipeline"
)

// Audio is a decoder.Decoder backed by a real GStreamer decode pipeline,
// producing interleaved 16-bit PCM at a fixed sample rate/channel count —
// the same target format the shared audio player adapter (internal/
// audioplayer/gst) consumes, so a clip's audio track and a dummy silent
// source are interchangeable from the player core's point of view.
type Audio struct {
	*pipelineState

	uri                    string
	sampleRateHz, channels int

	decodebin  *gst.Element
	appsink    *app.Sink
	capsfilter *gst.Element
}

// NewAudio builds (but does not start) an audio decode pipeline for uri,
// resampled to sampleRateHz/channels 16-bit PCM.
func NewAudio(uri string, sampleRateHz, channels int) (*Audio, error) {
	pipeline, decodebin, err := newDecodebinSource(uri)
	if err != nil {
		return nil, err
	}

	audioconvert, err := gst.NewElement("audioconvert")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create audioconvert: %w", err)
	}
	audioresample, err := gst.NewElement("audioresample")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create audioresample: %w", err)
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("audio/x-raw,format=S16LE,rate=%d,channels=%d,layout=interleaved", sampleRateHz, channels)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 8)
	appsink.SetProperty("drop", false)

	if err := pipeline.AddMany(audioconvert, audioresample, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("decoder/gst: add audio elements: %w", err)
	}
	if err := gst.ElementLinkMany(audioconvert, audioresample, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("decoder/gst: link audio elements: %w", err)
	}
	linkOnPadAdded(decodebin, audioconvert)

	return &Audio{
		pipelineState: newPipelineState(pipeline),
		uri:           uri,
		sampleRateHz:  sampleRateHz,
		channels:      channels,
		decodebin:     decodebin,
		appsink:       appsink,
		capsfilter:    capsfilter,
	}, nil
}

// Start implements decoder.Decoder.
func (a *Audio) Start(ctx context.Context) error { return a.start() }

// Stop implements decoder.Decoder.
func (a *Audio) Stop() error { return a.stop() }

// AwaitRelease implements decoder.Decoder.
func (a *Audio) AwaitRelease(ctx context.Context) error {
	select {
	case <-a.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read implements decoder.Decoder.
func (a *Audio) Read(opts decoder.ReadOptions) decoder.Result {
	if opts.SeekTargetUs != nil {
		flags := gst.SeekFlagFlush | gst.SeekFlagAccurate
		if ok := a.pipeline.SeekSimple(gst.FormatTime, flags, time.Duration(*opts.SeekTargetUs)*time.Microsecond); !ok {
			return decoder.Result{Status: decoder.StatusError, Err: fmt.Errorf("decoder/gst: audio seek to %dus failed", *opts.SeekTargetUs)}
		}
	}

	if ev := gstpipeline.PollOnce(a.pipeline, 0); ev.Kind == gstpipeline.BusEOS {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	} else if ev.Kind == gstpipeline.BusError {
		if gstpipeline.IsMissingPluginError(ev.Error) {
			return decoder.Result{Status: decoder.StatusEndOfStream}
		}
		return decoder.Result{Status: decoder.StatusError, Err: fmt.Errorf("decoder/gst: %s", ev.Error.Error())}
	}

	sample := a.appsink.PullSample()
	if sample == nil {
		if a.appsink.IsEOS() {
			return decoder.Result{Status: decoder.StatusEndOfStream}
		}
		return decoder.Result{Status: decoder.StatusError, Err: fmt.Errorf("decoder/gst: pull sample returned nil")}
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return decoder.Result{Status: decoder.StatusError, Err: fmt.Errorf("decoder/gst: sample has no buffer")}
	}
	mapInfo := buffer.Map(gst.MapRead)
	defer buffer.Unmap()
	data := mapInfo.Bytes()
	if len(data) == 0 {
		return decoder.Result{Status: decoder.StatusOK, Frame: &decoder.Frame{RangeLength: 0}}
	}

	frameData := make([]byte, len(data))
	copy(frameData, data)

	return decoder.Result{
		Status: decoder.StatusOK,
		Frame: &decoder.Frame{
			PTSUs:       buffer.PresentationTimestamp().Microseconds(),
			Data:        frameData,
			RangeLength: len(frameData),
			DecodedAt:   time.Now(),
		},
	}
}

// GetFormat implements decoder.Decoder.
func (a *Audio) GetFormat() (decoder.Format, error) {
	return decoder.Format{
		ComponentName: a.ComponentName(),
		MimeType:      "audio/raw",
		SampleRateHz:  a.sampleRateHz,
		Channels:      a.channels,
	}, nil
}

// ComponentName implements decoder.Decoder.
func (a *Audio) ComponentName() string { return "gst.audio" }
