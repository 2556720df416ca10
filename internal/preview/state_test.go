package preview

import "testing"

func TestBitsetSetClearHas(t *testing.T) {
	var b bitset
	if b.has(FlagPlaying) {
		t.Fatal("zero-value bitset must have no flags set")
	}
	b.set(FlagPlaying)
	if !b.has(FlagPlaying) {
		t.Fatal("expected FlagPlaying set")
	}
	if b.has(FlagAtEOS) {
		t.Fatal("setting one flag must not set another")
	}
	b.set(FlagAtEOS)
	b.clear(FlagPlaying)
	if b.has(FlagPlaying) {
		t.Fatal("expected FlagPlaying cleared")
	}
	if !b.has(FlagAtEOS) {
		t.Fatal("clearing one flag must not clear another")
	}
}

func TestBitsetSetIf(t *testing.T) {
	var b bitset
	b.setIf(FlagLooping, true)
	if !b.has(FlagLooping) {
		t.Fatal("setIf(true) should set the flag")
	}
	b.setIf(FlagLooping, false)
	if b.has(FlagLooping) {
		t.Fatal("setIf(false) should clear the flag")
	}
}

func TestFlagString(t *testing.T) {
	if FlagPlaying.String() != "PLAYING" {
		t.Errorf("FlagPlaying.String() = %q", FlagPlaying.String())
	}
	if Flag(0).String() != "UNKNOWN" {
		t.Errorf("Flag(0).String() = %q, want UNKNOWN", Flag(0).String())
	}
}
