package codecdetect

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

func buildMP4(t *testing.T, sampleEntry string, withAudio bool) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	if sampleEntry != "" {
		init.AddEmptyTrack(25000, "video", "und")
		init.Moov.Traks[0].Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox(sampleEntry, 256, 256, nil))
	}
	if withAudio {
		init.AddEmptyTrack(48000, "audio", "und")
	}

	var buf bytes.Buffer
	if err := mp4.NewFtyp("isom", 0x200, []string{"isom"}).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFromBytes(t *testing.T) {
	tests := []struct {
		entry string
		want  Codec
	}{
		{"avc1", CodecH264},
		{"avc3", CodecH264},
		{"mp4v", CodecMPEG4},
		{"hvc1", CodecHEVC},
		{"av01", CodecAV1},
		{"vp09", CodecUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, err := DetectFromBytes(buildMP4(t, tt.entry, false))
			if err != nil {
				t.Fatalf("DetectFromBytes failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInspect_Audio(t *testing.T) {
	info, err := Inspect(bytes.NewReader(buildMP4(t, "avc1", true)))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !info.HasAudio {
		t.Error("expected audio track to be reported")
	}
	if info.Video != CodecH264 {
		t.Errorf("expected h264, got %s", info.Video)
	}
}

func TestInspect_AudioOnly(t *testing.T) {
	_, err := Inspect(bytes.NewReader(buildMP4(t, "", true)))
	if !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}

func TestForEncoder(t *testing.T) {
	tests := map[string]Codec{
		"libx264":    CodecH264,
		"mpeg4":      CodecMPEG4,
		"libmp3lame": CodecUnknown,
	}
	for enc, want := range tests {
		if got := ForEncoder(enc); got != want {
			t.Errorf("ForEncoder(%q) = %s, want %s", enc, got, want)
		}
	}
}

func TestInspector_ExpectedCodec(t *testing.T) {
	var in Inspector
	if got := in.ExpectedCodec("libx264"); got != "h264" {
		t.Errorf("expected h264, got %s", got)
	}
	if got := in.ExpectedCodec("mpeg4"); got != "mpeg4" {
		t.Errorf("expected mpeg4, got %s", got)
	}
}
