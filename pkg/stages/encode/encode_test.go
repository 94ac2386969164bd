package encode

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/user/imganimate/pkg/adapters/logger"
	"github.com/user/imganimate/pkg/codec"
	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/mocks"
	"github.com/user/imganimate/pkg/pipeline"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/retime"
)

type fakeInspector struct {
	codec string
	err   error
}

func (f fakeInspector) VideoCodec([]byte) (string, error) { return f.codec, f.err }
func (f fakeInspector) ExpectedCodec(string) string       { return "h264" }

func mustProfile(t *testing.T, mode string) codec.Profile {
	t.Helper()
	p, err := codec.ProfileFor(mode)
	if err != nil {
		t.Fatalf("ProfileFor(%q): %v", mode, err)
	}
	return p
}

func testInput(t *testing.T) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Predictions: mocks.SolidFrames(5, 256, 256, 0.5),
		Timeline:    retime.Timeline{Duration: 1, FPS: 10},
		Profile:     mustProfile(t, "mp4"),
		Binary:      "/opt/ffmpeg/bin/ffmpeg",
		Audio:       &ports.AudioSource{Path: "drive.mp4", Start: 2, Duration: 1},
		OutputPath:  "output/drive/face_stretch_stretch_mp4.mp4",
	}
}

func TestStage_Execute(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	fs := mocks.NewFileSystem()
	progress := &mocks.Progress{}

	stage := NewStage(mockEncoder, fs, fakeInspector{codec: "h264"}, progress, logger.NewNoop())
	input := testInput(t)

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mockEncoder.BeginCalls) != 1 {
		t.Fatalf("expected 1 Begin call, got %d", len(mockEncoder.BeginCalls))
	}
	begin := mockEncoder.BeginCalls[0]
	if begin.Width != 256 || begin.Height != 256 || begin.FPS != 10 {
		t.Errorf("unexpected Begin %dx%d@%v", begin.Width, begin.Height, begin.FPS)
	}
	if begin.Options.VideoCodec != codec.EncoderX264 || begin.Options.AudioCodec != codec.EncoderLAME {
		t.Errorf("unexpected codecs %+v", begin.Options)
	}
	if begin.Options.Binary != input.Binary || begin.Options.Audio != input.Audio {
		t.Errorf("binary and audio should be forwarded, got %+v", begin.Options)
	}

	if len(mockEncoder.EncodeFrameCalls) != 10 {
		t.Fatalf("expected 10 EncodeFrame calls, got %d", len(mockEncoder.EncodeFrameCalls))
	}
	for k, call := range mockEncoder.EncodeFrameCalls {
		if call.TimestampMs != k*100 {
			t.Errorf("frame %d: expected %dms, got %dms", k, k*100, call.TimestampMs)
		}
	}
	// Five predictions over ten output frames: each prediction shown twice.
	calls := mockEncoder.EncodeFrameCalls
	if calls[0].Image != calls[1].Image || calls[1].Image == calls[2].Image {
		t.Error("expected pairs of repeated prediction frames")
	}

	if !mockEncoder.EndCalled || mockEncoder.CloseCalls != 1 {
		t.Errorf("expected End and Close, got end=%v close=%d", mockEncoder.EndCalled, mockEncoder.CloseCalls)
	}
	if _, ok := fs.GetFile(input.OutputPath); !ok {
		t.Error("expected output file to be written")
	}

	if result.FrameCount != 10 || result.FileSize != 8 || result.VideoCodec != "h264" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(progress.Totals) != 1 || progress.Totals[0] != 10 || progress.Added != 10 || progress.Finishes != 1 {
		t.Errorf("unexpected progress %+v", progress)
	}
}

func TestStage_Execute_Downsample(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	preds := mocks.SolidFrames(100, 4, 4, 0)
	for i := range preds {
		preds[i].Pix[0] = (float32(i) + 0.5) / 255
	}

	input := testInput(t)
	input.Predictions = preds

	stage := NewStage(mockEncoder, mocks.NewFileSystem(), nil, &mocks.Progress{}, logger.NewNoop())
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for k, call := range mockEncoder.EncodeFrameCalls {
		got := call.Image.(*image.RGBA).Pix[0]
		if int(got) != k*10 {
			t.Errorf("frame %d: expected prediction %d, got %d", k, k*10, got)
		}
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*pipeline.EncodeInput)
		enc    *mocks.VideoEncoder
		fs     func() *mocks.FileSystem
		want   error
	}{
		{
			name:   "no predictions",
			modify: func(in *pipeline.EncodeInput) { in.Predictions = nil },
			want:   ErrNoPredictions,
		},
		{
			name:   "empty timeline",
			modify: func(in *pipeline.EncodeInput) { in.Timeline = retime.Timeline{Duration: 0.01, FPS: 10} },
			want:   ErrEmptyTimeline,
		},
		{
			name: "begin fails",
			enc: &mocks.VideoEncoder{BeginFunc: func(int, int, float64, ports.EncoderOptions) error {
				return errors.New("ffmpeg not found")
			}},
		},
		{
			name: "end fails",
			enc: &mocks.VideoEncoder{EndFunc: func() ([]byte, error) {
				return nil, errors.New("Unknown encoder 'libfdk_aac'")
			}},
		},
		{
			name: "write fails",
			fs: func() *mocks.FileSystem {
				fs := mocks.NewFileSystem()
				fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }
				return fs
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testInput(t)
			if tt.modify != nil {
				tt.modify(&input)
			}
			enc := tt.enc
			if enc == nil {
				enc = &mocks.VideoEncoder{}
			}
			fs := mocks.NewFileSystem()
			if tt.fs != nil {
				fs = tt.fs()
			}

			_, err := NewStage(enc, fs, nil, &mocks.Progress{}, logger.NewNoop()).Execute(context.Background(), input)
			if !errors.Is(err, errkind.ErrEncode) {
				t.Fatalf("expected ErrEncode, got %v", err)
			}
			if errkind.StageOf(err) != pipeline.StageEncode {
				t.Errorf("expected stage %q, got %q", pipeline.StageEncode, errkind.StageOf(err))
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if len(enc.BeginCalls) > 0 && enc.CloseCalls == 0 {
				t.Error("expected encoder to be closed")
			}
		})
	}
}

func TestStage_Execute_ContextCancelled(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, mocks.NewFileSystem(), nil, &mocks.Progress{}, logger.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, testInput(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if mockEncoder.CloseCalls != 1 {
		t.Error("expected encoder to be closed after cancellation")
	}
}

func TestVerify(t *testing.T) {
	if got := Verify(nil, logger.NewNoop(), nil, "libx264"); got != "" {
		t.Errorf("expected empty codec without inspector, got %q", got)
	}
	if got := Verify(fakeInspector{codec: "mpeg4"}, logger.NewNoop(), nil, "libx264"); got != "mpeg4" {
		t.Errorf("expected mpeg4, got %q", got)
	}
	if got := Verify(fakeInspector{err: errors.New("not mp4")}, logger.NewNoop(), nil, "libx264"); got != "" {
		t.Errorf("expected empty codec on error, got %q", got)
	}
}
