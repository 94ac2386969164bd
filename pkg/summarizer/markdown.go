package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Animation Summary"))
	if s.Error != "" {
		fmt.Fprintf(&b, "> **%s:** %s\n\n", t("Failed"), s.Error)
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Inputs"))
	f.table(&b,
		row{t("Source Image"), s.Source.Path},
		row{t("Image Dimensions"), dims(s.Source.Width, s.Source.Height)},
		row{t("Driving Video"), s.Driving.Path},
		row{t("Video Dimensions"), dims(s.Driving.Width, s.Driving.Height)},
		row{t("Frame Rate"), fmt.Sprintf("%.2f fps", s.Driving.FPS)},
		row{t("Time Window"), fmt.Sprintf("%.2f s - %.2f s (%.2f s)", s.Driving.Start, s.Driving.Stop, s.Driving.Stop-s.Driving.Start)},
		row{t("Driving Frames"), fmt.Sprintf("%d", s.Driving.Frames)},
	)

	scale := t("Relative")
	if s.Settings.AdaptScale {
		scale = t("Adaptive")
	}
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	f.table(&b,
		row{t("Generation Mode"), s.Settings.Mode},
		row{t("Scale"), scale},
		row{t("Image Resize"), s.Settings.ImageResize},
		row{t("Video Resize"), s.Settings.VideoResize},
		row{t("Model Input"), dims(s.Settings.TargetSize, s.Settings.TargetSize)},
		row{t("Video Codec"), s.Settings.VideoCodec},
		row{t("Audio Codec"), s.Settings.AudioCodec},
	)

	if len(s.Outputs) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Outputs"))
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", t("Video"), t("Path"), t("Frames"), t("Size"), t("File Size"), t("Codec"))
		b.WriteString("|---|---|---:|---|---:|---|\n")
		for _, v := range s.Outputs {
			fmt.Fprintf(&b, "| %s | `%s` | %d | %s | %s | %s |\n",
				t(v.Label), v.Path, v.FrameCount, dims(v.Width, v.Height), formatBytes(v.FileSize), orNA(v.VideoCodec, t))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\n%s: %s", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if s.ElapsedMs > 0 {
		fmt.Fprintf(&b, " (%s %.1f s)", t("took"), float64(s.ElapsedMs)/1000)
	}
	if f.version != "" {
		fmt.Fprintf(&b, " by imganimate %s", f.version)
	}
	b.WriteString("\n")

	return b.String()
}

type row struct {
	label string
	value string
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows ...row) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, orNA(r.value, f.translate))
	}
	b.WriteString("\n")
}

func dims(w, h int) string {
	if w == 0 || h == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func orNA(s string, t func(string) string) string {
	if s == "" {
		return t("N/A")
	}
	return s
}

// formatBytes formats a byte count using binary units.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
