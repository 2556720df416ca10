package audioplayer

import (
	"context"
	"errors"
	"testing"

	"github.com/visiona/previewplayer/internal/decoder"
)

// fakeDecoder is a minimal decoder.Decoder stub for exercising
// DecoderSource's Read/SeekTo translation logic without a real backend.
type fakeDecoder struct {
	componentName string
	results       []decoder.Result
	next          int
	lastOpts      decoder.ReadOptions
}

func (f *fakeDecoder) Start(ctx context.Context) error      { return nil }
func (f *fakeDecoder) Stop() error                          { return nil }
func (f *fakeDecoder) AwaitRelease(ctx context.Context) error { return nil }
func (f *fakeDecoder) GetFormat() (decoder.Format, error)   { return decoder.Format{}, nil }
func (f *fakeDecoder) ComponentName() string                { return f.componentName }

func (f *fakeDecoder) Read(opts decoder.ReadOptions) decoder.Result {
	f.lastOpts = opts
	if f.next >= len(f.results) {
		return decoder.Result{Status: decoder.StatusEndOfStream}
	}
	r := f.results[f.next]
	f.next++
	return r
}

func TestDecoderSource_ReadTranslatesOKFrame(t *testing.T) {
	dec := &fakeDecoder{
		componentName: "fake",
		results: []decoder.Result{
			{Status: decoder.StatusOK, Frame: &decoder.Frame{PTSUs: 5000, Data: []byte{1, 2, 3}, RangeLength: 3}},
		},
	}
	src := NewDecoderSource(dec)
	data, ptsUs, ok, err := src.Read()
	if err != nil || !ok {
		t.Fatalf("Read() = data=%v ptsUs=%d ok=%v err=%v", data, ptsUs, ok, err)
	}
	if ptsUs != 5000 {
		t.Errorf("ptsUs = %d, want 5000", ptsUs)
	}
	if len(data) != 3 {
		t.Errorf("data len = %d, want 3", len(data))
	}
}

func TestDecoderSource_ReadEmptyFrameIsNoOpTick(t *testing.T) {
	dec := &fakeDecoder{
		results: []decoder.Result{
			{Status: decoder.StatusOK, Frame: &decoder.Frame{PTSUs: 0, RangeLength: 0}},
		},
	}
	src := NewDecoderSource(dec)
	data, _, ok, err := src.Read()
	if err != nil || !ok {
		t.Fatalf("expected no-op tick, got ok=%v err=%v", ok, err)
	}
	if data != nil {
		t.Errorf("expected nil data for a no-op tick, got %v", data)
	}
}

func TestDecoderSource_ReadEOS(t *testing.T) {
	dec := &fakeDecoder{results: []decoder.Result{{Status: decoder.StatusEndOfStream}}}
	src := NewDecoderSource(dec)
	_, _, ok, err := src.Read()
	if ok || err != nil {
		t.Fatalf("expected ok=false err=nil at EOS, got ok=%v err=%v", ok, err)
	}
}

func TestDecoderSource_ReadError(t *testing.T) {
	wantErr := errors.New("boom")
	dec := &fakeDecoder{results: []decoder.Result{{Status: decoder.StatusError, Err: wantErr}}}
	src := NewDecoderSource(dec)
	_, _, ok, err := src.Read()
	if ok || !errors.Is(err, wantErr) {
		t.Fatalf("expected ok=false err=%v, got ok=%v err=%v", wantErr, ok, err)
	}
}

func TestDecoderSource_SeekToIsConsumedByNextRead(t *testing.T) {
	dec := &fakeDecoder{
		results: []decoder.Result{
			{Status: decoder.StatusOK, Frame: &decoder.Frame{PTSUs: 9000, Data: []byte{1}, RangeLength: 1}},
		},
	}
	src := NewDecoderSource(dec)
	if err := src.SeekTo(9000); err != nil {
		t.Fatalf("SeekTo: %v", err)
	}
	if _, _, _, err := src.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dec.lastOpts.SeekTargetUs == nil || *dec.lastOpts.SeekTargetUs != 9000 {
		t.Fatalf("expected the queued seek hint to reach the decoder, got %+v", dec.lastOpts)
	}

	// A second Read must not repeat the seek hint.
	dec.results = append(dec.results, decoder.Result{Status: decoder.StatusOK, Frame: &decoder.Frame{PTSUs: 9100, Data: []byte{2}, RangeLength: 1}})
	if _, _, _, err := src.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dec.lastOpts.SeekTargetUs != nil {
		t.Fatal("seek hint should only apply to the Read immediately following SeekTo")
	}
}

func TestDecoderSource_UnwrapReturnsOriginalDecoder(t *testing.T) {
	dec := &fakeDecoder{componentName: "fake"}
	src := NewDecoderSource(dec)
	if src.Unwrap() != dec {
		t.Fatal("Unwrap should return the exact wrapped decoder")
	}
	if src.ComponentName() != "fake" {
		t.Errorf("ComponentName = %q, want fake", src.ComponentName())
	}
}
