// Package codecdetect inspects MP4 sample descriptions to report which codecs
// a file was encoded with.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/imganimate/pkg/ports"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecMPEG4   Codec = "mpeg4"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("codecdetect: no video track found")

// Info describes the tracks of an MP4 file.
type Info struct {
	Video    Codec
	HasAudio bool
}

// DetectFromFile detects the video codec used in an MP4 file.
func DetectFromFile(path string) (Codec, error) {
	info, err := InspectFile(path)
	return info.Video, err
}

// DetectFromBytes detects the video codec from MP4 data bytes.
func DetectFromBytes(data []byte) (Codec, error) {
	info, err := Inspect(bytes.NewReader(data))
	return info.Video, err
}

// InspectFile reads track information from an MP4 file.
func InspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{Video: CodecUnknown}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Inspect(f)
}

// Inspect reads track information from an MP4 stream.
func Inspect(reader io.ReadSeeker) (Info, error) {
	info := Info{Video: CodecUnknown}

	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return info, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return info, ErrNoVideoTrack
	}

	foundVideo := false
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if !foundVideo {
				foundVideo = true
				info.Video = codecOf(trak)
			}
		case "soun":
			info.HasAudio = true
		}
	}

	if !foundVideo {
		return info, ErrNoVideoTrack
	}
	return info, nil
}

func codecOf(trak *mp4.TrakBox) Codec {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return CodecUnknown
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "mp4v":
			return CodecMPEG4
		case "hvc1", "hev1":
			return CodecHEVC
		case "av01":
			return CodecAV1
		}
	}

	return CodecUnknown
}

// ForEncoder maps an ffmpeg video encoder id to the codec it produces.
func ForEncoder(encoder string) Codec {
	switch encoder {
	case "libx264", "h264":
		return CodecH264
	case "mpeg4":
		return CodecMPEG4
	case "libx265", "hevc":
		return CodecHEVC
	case "libaom-av1", "libsvtav1":
		return CodecAV1
	}
	return CodecUnknown
}

// Inspector implements ports.ContainerInspector.
type Inspector struct{}

// VideoCodec returns the codec of the first video track in data.
func (Inspector) VideoCodec(data []byte) (string, error) {
	c, err := DetectFromBytes(data)
	return string(c), err
}

// ExpectedCodec returns the codec an ffmpeg encoder id produces.
func (Inspector) ExpectedCodec(encoder string) string {
	return string(ForEncoder(encoder))
}

var _ ports.ContainerInspector = Inspector{}
