// Package mp4probe reads media descriptors straight from MP4 boxes, without
// starting an external process.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/imganimate/pkg/ports"
)

var (
	// ErrNoVideoTrack is returned when the file has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")
	// ErrNoTiming is returned when the video track carries no samples.
	ErrNoTiming = errors.New("mp4probe: video track has no timing information")
)

// Prober implements ports.MediaProber for MP4 files.
type Prober struct{}

// New creates a new Prober.
func New() *Prober {
	return &Prober{}
}

// Probe reads dimensions, duration, frame rate and audio presence.
func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return ports.MediaDescriptor{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ports.MediaDescriptor{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return ports.MediaDescriptor{}, fmt.Errorf("decode mp4: %w", err)
	}

	return Describe(mp4File)
}

// Describe builds a descriptor from a decoded file.
func Describe(mp4File *mp4.File) (ports.MediaDescriptor, error) {
	var desc ports.MediaDescriptor

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return desc, ErrNoVideoTrack
	}

	var video *mp4.TrakBox
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if video == nil {
				video = trak
			}
		case "soun":
			desc.HasAudio = true
		}
	}
	if video == nil || video.Mdia.Mdhd == nil || video.Mdia.Minf == nil || video.Mdia.Minf.Stbl == nil {
		return desc, ErrNoVideoTrack
	}

	stbl := video.Mdia.Minf.Stbl
	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				desc.Width = int(vse.Width)
				desc.Height = int(vse.Height)
				desc.Codec = vse.Type()
				break
			}
		}
	}
	if desc.Width == 0 || desc.Height == 0 {
		desc.Width = int(video.Tkhd.Width >> 16)
		desc.Height = int(video.Tkhd.Height >> 16)
	}

	timescale := video.Mdia.Mdhd.Timescale
	if timescale == 0 {
		return desc, ErrNoTiming
	}

	samples, units, err := sampleTiming(mp4File, moov, video)
	if err != nil {
		return desc, err
	}
	if samples == 0 || units == 0 {
		return desc, ErrNoTiming
	}

	desc.Duration = float64(units) / float64(timescale)
	desc.FPS = float64(samples) / desc.Duration

	// The movie header duration includes edit lists; prefer it when present.
	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 && moov.Mvhd.Duration > 0 {
		desc.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	}

	return desc, nil
}

// sampleTiming returns the sample count and the summed sample durations of
// the video track in media timescale units.
func sampleTiming(mp4File *mp4.File, moov *mp4.MoovBox, video *mp4.TrakBox) (samples, units uint64, err error) {
	if stts := video.Mdia.Minf.Stbl.Stts; stts != nil {
		for i, count := range stts.SampleCount {
			samples += uint64(count)
			units += uint64(count) * uint64(stts.SampleTimeDelta[i])
		}
	}
	if samples > 0 || !mp4File.IsFragmented() {
		return samples, units, nil
	}

	trackID := video.Tkhd.TrackID
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || frag.Moof.Traf == nil || frag.Moof.Traf.Tfhd.TrackID != trackID {
				continue
			}
			full, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, 0, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range full {
				samples++
				units += uint64(s.Dur)
			}
		}
	}
	return samples, units, nil
}

var _ ports.MediaProber = (*Prober)(nil)
