// Package ffprobe describes media files by running ffprobe and parsing its
// JSON report.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/imganimate/pkg/adapters/ffmpeg"
	"github.com/user/imganimate/pkg/ports"
)

// ErrNoVideoStream is returned when the report lists no video stream.
var ErrNoVideoStream = errors.New("ffprobe: no video stream found")

// Prober implements ports.MediaProber with an ffprobe subprocess.
type Prober struct {
	binary string
}

// New creates a prober. An empty binary is resolved with ffmpeg.FindFFprobe.
func New(binary string) *Prober {
	return &Prober{binary: binary}
}

// Probe runs ffprobe on path.
func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaDescriptor, error) {
	binary, err := ffmpeg.FindFFprobe(p.binary)
	if err != nil {
		return ports.MediaDescriptor{}, err
	}

	out, err := ffmpeg.Run(ctx, binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return ports.MediaDescriptor{}, err
	}

	return Parse(out)
}

// report matches the parts of the ffprobe JSON output that are used.
type report struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// Parse converts an ffprobe JSON report to a descriptor. The first video
// stream supplies size and rate; the container supplies the duration.
func Parse(data []byte) (ports.MediaDescriptor, error) {
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return ports.MediaDescriptor{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var desc ports.MediaDescriptor
	found := false
	streamDuration := 0.0
	for _, s := range r.Streams {
		switch s.CodecType {
		case "video":
			if found {
				continue
			}
			found = true
			desc.Width = s.Width
			desc.Height = s.Height
			desc.Codec = s.CodecName
			desc.FPS = ParseFrameRate(s.AvgFrameRate)
			if desc.FPS == 0 {
				desc.FPS = ParseFrameRate(s.RFrameRate)
			}
			streamDuration, _ = strconv.ParseFloat(s.Duration, 64)
		case "audio":
			desc.HasAudio = true
		}
	}
	if !found {
		return desc, ErrNoVideoStream
	}

	if d, err := strconv.ParseFloat(r.Format.Duration, 64); err == nil {
		desc.Duration = d
	} else {
		desc.Duration = streamDuration
	}

	return desc, nil
}

// ParseFrameRate parses rates like "30000/1001" or "25". It returns 0 for
// anything it cannot parse, including "0/0".
func ParseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

var _ ports.MediaProber = (*Prober)(nil)
