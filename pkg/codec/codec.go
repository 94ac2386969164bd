// Package codec maps a codec mode chosen on the command line to concrete
// ffmpeg encoder identifiers.
package codec

import (
	"sort"
	"strings"

	"github.com/user/imganimate/pkg/errkind"
)

// Mode is a user-facing codec choice.
type Mode string

const (
	// ModeH264 is H.264 video with AAC audio. Plays on most devices.
	ModeH264 Mode = "h264"
	// ModeMPEG4 is MPEG-4 Part 2 video with AAC audio. Least compatible.
	ModeMPEG4 Mode = "mpeg4"
	// ModeMP4 is H.264 video with MP3 audio, the plain ffmpeg default set.
	ModeMP4 Mode = "mp4"
)

// Encoder identifiers as understood by ffmpeg.
const (
	EncoderX264   = "libx264"
	EncoderMPEG4  = "mpeg4"
	EncoderFDKAAC = "libfdk_aac"
	EncoderLAME   = "libmp3lame"
)

// Profile is the encoder pair used for one run.
type Profile struct {
	Mode Mode

	VideoEncoder string // ffmpeg -c:v value
	AudioEncoder string // ffmpeg -c:a value

	// Short names used in reports ("h.264", "m4a").
	VideoName string
	AudioName string

	// RequiresAlternateBinary is set when AudioEncoder is missing from stock
	// ffmpeg builds and a separately built binary must be used.
	RequiresAlternateBinary bool
}

// VideoDisplay returns the display name of the video encoder.
func (p Profile) VideoDisplay() string {
	return EncoderDisplayName(p.VideoEncoder)
}

// AudioDisplay returns the display name of the audio encoder.
func (p Profile) AudioDisplay() string {
	return EncoderDisplayName(p.AudioEncoder)
}

var profiles = map[Mode]Profile{
	ModeH264: {
		Mode:                    ModeH264,
		VideoEncoder:            EncoderX264,
		AudioEncoder:            EncoderFDKAAC,
		VideoName:               "h.264",
		AudioName:               "m4a",
		RequiresAlternateBinary: true,
	},
	ModeMP4: {
		Mode:         ModeMP4,
		VideoEncoder: EncoderX264,
		AudioEncoder: EncoderLAME,
		VideoName:    "h.264",
		AudioName:    "mp3",
	},
	ModeMPEG4: {
		Mode:                    ModeMPEG4,
		VideoEncoder:            EncoderMPEG4,
		AudioEncoder:            EncoderFDKAAC,
		VideoName:               "MPEG4",
		AudioName:               "m4a",
		RequiresAlternateBinary: true,
	},
}

var displayNames = map[string]string{
	EncoderX264:   "h.264",
	EncoderMPEG4:  "MPEG4",
	EncoderLAME:   "MP3",
	EncoderFDKAAC: "AAC",
}

// ProfileFor returns the profile for mode. The returned value is a copy.
// It does not check whether the alternate binary exists.
func ProfileFor(mode string) (Profile, error) {
	p, ok := profiles[Mode(strings.ToLower(strings.TrimSpace(mode)))]
	if !ok {
		return Profile{}, errkind.Configf("unknown codec mode %q (want one of %s)", mode, strings.Join(ModeNames(), ", "))
	}
	return p, nil
}

// Modes returns all codec modes in a stable order.
func Modes() []Mode {
	modes := make([]Mode, 0, len(profiles))
	for m := range profiles {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// ModeNames returns Modes as strings.
func ModeNames() []string {
	var names []string
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return names
}

// EncoderDisplayName returns the human-readable name of an ffmpeg encoder id,
// or the id itself when unknown.
func EncoderDisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return id
}
