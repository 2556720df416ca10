// Package gstpipeline holds the GStreamer plumbing used by the real
// decoder backend in this module (internal/decoder/gst): error
// classification and bus polling. internal/audioplayer/gst does not use it.
// Generalized from
// modules/stream-capture/internal/rtsp/{errors,monitor}.go, which did the
// same thing for a single RTSP capture pipeline.
package gstpipeline

import (
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// ErrorCategory classifies a GStreamer error for logging and for deciding
// whether a failure is the kind §4.4's "swallow missing-decoder errors for
// optional tracks" path should catch (MissingPlugin) versus one that must
// surface as a hard decode error.
type ErrorCategory int

const (
	ErrCategoryUnknown ErrorCategory = iota
	ErrCategoryIO
	ErrCategoryCodec
	ErrCategoryMissingPlugin
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryIO:
		return "io"
	case ErrCategoryCodec:
		return "codec"
	case ErrCategoryMissingPlugin:
		return "missing_plugin"
	default:
		return "unknown"
	}
}

// ClassifyError analyzes a GStreamer GError and categorizes it.
// go-gst's GError does not expose Domain(), so like the capture pipeline
// this relies on string matching over the message and debug text.
func ClassifyError(gerr *gst.GError) ErrorCategory {
	if gerr == nil {
		return ErrCategoryUnknown
	}
	msg := strings.ToLower(gerr.Error())
	debug := strings.ToLower(gerr.DebugString())
	combined := msg + " " + debug

	for _, kw := range []string{"missing plugin", "no decoder", "not found for", "codec not found"} {
		if strings.Contains(combined, kw) {
			return ErrCategoryMissingPlugin
		}
	}
	for _, kw := range []string{"codec", "decode", "format", "negotiation", "caps", "not negotiated"} {
		if strings.Contains(combined, kw) {
			return ErrCategoryCodec
		}
	}
	for _, kw := range []string{"no such file", "could not open", "i/o error", "permission denied"} {
		if strings.Contains(combined, kw) {
			return ErrCategoryIO
		}
	}
	return ErrCategoryUnknown
}

// IsMissingPluginError reports whether err's message looks like a
// missing-codec/plugin failure — the case (e.g. an absent QCELP decoder)
// that the internal/decoder/gst Read paths swallow, without logging, by
// reporting end-of-stream rather than failing the whole clip.
func IsMissingPluginError(gerr *gst.GError) bool {
	return ClassifyError(gerr) == ErrCategoryMissingPlugin
}
