package gstpipeline

import "testing"

// go-gst's GError is a CGo-backed type we can't construct directly in a
// unit test without a real GStreamer error; ClassifyError/IsMissingPluginError
// are exercised indirectly by internal/decoder/gst's error handling. The nil
// case is the one boundary this package can test without a live pipeline.
func TestClassifyError_Nil(t *testing.T) {
	if got := ClassifyError(nil); got != ErrCategoryUnknown {
		t.Errorf("ClassifyError(nil) = %v, want %v", got, ErrCategoryUnknown)
	}
}

func TestErrorCategoryString(t *testing.T) {
	cases := map[ErrorCategory]string{
		ErrCategoryUnknown:       "unknown",
		ErrCategoryIO:            "io",
		ErrCategoryCodec:         "codec",
		ErrCategoryMissingPlugin: "missing_plugin",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", cat, got, want)
		}
	}
}

func TestIsMissingPluginError_Nil(t *testing.T) {
	if IsMissingPluginError(nil) {
		t.Error("nil GError should not classify as a missing-plugin error")
	}
}
