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

// Video is a decoder.Decoder backed by a real GStreamer decode pipeline,
// producing interleaved RGB24 frames.
type Video struct {
	*pipelineState

	uri           string
	width, height int

	decodebin  *gst.Element
	appsink    *app.Sink
	capsfilter *gst.Element
}

// NewVideo builds (but does not start) a video decode pipeline for uri,
// scaled to width x height RGB24.
func NewVideo(uri string, width, height int) (*Video, error) {
	pipeline, decodebin, err := newDecodebinSource(uri)
	if err != nil {
		return nil, err
	}

	videoconvert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create videoconvert: %w", err)
	}
	videoscale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create videoscale: %w", err)
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("video/x-raw,format=RGB,width=%d,height=%d", width, height)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("decoder/gst: create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 4)
	appsink.SetProperty("drop", false)

	if err := pipeline.AddMany(videoconvert, videoscale, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("decoder/gst: add video elements: %w", err)
	}
	if err := gst.ElementLinkMany(videoconvert, videoscale, capsfilter, appsink.Element); err != nil {
		return nil, fmt.Errorf("decoder/gst: link video elements: %w", err)
	}
	linkOnPadAdded(decodebin, videoconvert)

	return &Video{
		pipelineState: newPipelineState(pipeline),
		uri:           uri,
		width:         width,
		height:        height,
		decodebin:     decodebin,
		appsink:       appsink,
		capsfilter:    capsfilter,
	}, nil
}

// Start implements decoder.Decoder.
func (v *Video) Start(ctx context.Context) error { return v.start() }

// Stop implements decoder.Decoder.
func (v *Video) Stop() error { return v.stop() }

// AwaitRelease implements decoder.Decoder, blocking until Stop has fully
// transitioned the pipeline to NULL or ctx is done.
func (v *Video) AwaitRelease(ctx context.Context) error {
	select {
	case <-v.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read implements decoder.Decoder. A SeekTargetUs hint triggers a
// flushing, accurate seek on the pipeline before pulling the next sample.
func (v *Video) Read(opts decoder.ReadOptions) decoder.Result {
	if opts.SeekTargetUs != nil {
		if err := v.seek(*opts.SeekTargetUs, opts.SeekMode); err != nil {
			return decoder.Result{Status: decoder.StatusError, Err: err}
		}
	}

	if ev := gstpipeline.PollOnce(v.pipeline, 0); ev.Kind == gstpipeline.BusEOS {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	} else if ev.Kind == gstpipeline.BusError {
		if gstpipeline.IsMissingPluginError(ev.Error) {
			return decoder.Result{Status: decoder.StatusEndOfStream}
		}
		return decoder.Result{Status: decoder.StatusError, Err: fmt.Errorf("decoder/gst: %s", ev.Error.Error())}
	}

	sample := v.appsink.PullSample()
	if sample == nil {
		if v.appsink.IsEOS() {
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

func (v *Video) seek(targetUs int64, mode decoder.SeekMode) error {
	flags := gst.SeekFlagFlush | gst.SeekFlagAccurate
	if mode == decoder.SeekNextSync {
		flags = gst.SeekFlagFlush | gst.SeekFlagKeyUnit
	}
	if ok := v.pipeline.SeekSimple(gst.FormatTime, flags, time.Duration(targetUs)*time.Microsecond); !ok {
		return fmt.Errorf("decoder/gst: seek to %dus failed", targetUs)
	}
	return nil
}

// GetFormat implements decoder.Decoder.
func (v *Video) GetFormat() (decoder.Format, error) {
	caps := v.capsfilter.GetStaticPad("src").GetCurrentCaps()
	width, height := v.width, v.height
	if caps != nil && caps.GetSize() > 0 {
		st := caps.GetStructureAt(0)
		if w, ok := st.GetValue("width").(int); ok {
			width = w
		}
		if h, ok := st.GetValue("height").(int); ok {
			height = h
		}
	}
	return decoder.Format{
		ComponentName: v.ComponentName(),
		MimeType:      "video/raw",
		Width:         width,
		Height:        height,
	}, nil
}

// ComponentName implements decoder.Decoder.
func (v *Video) ComponentName() string { return "gst.video" }
