package captions

import (
	"fmt"
	"strings"
	"time"
)

// Output canvas for the vertical clip variants.
const (
	PlayResX = 432
	PlayResY = 768
)

// RenderCenterASS renders chunks as centered white captions, the style used
// over stock-footage and AI-image visuals.
func RenderCenterASS(chunks []Chunk) string {
	return renderASS(chunks, "Center")
}

// RenderBottomASS renders chunks bottom-center on a semi-transparent box,
// the style used over sub-clips of the source video.
func RenderBottomASS(chunks []Chunk) string {
	return renderASS(chunks, "Bottom")
}

func renderASS(chunks []Chunk, style string) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range chunks {
		if c.Dur <= 0 || strings.TrimSpace(c.Text) == "" {
			continue
		}
		start := c.Start
		if start < 0 {
			start = 0
		}
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(start))
		b.WriteString(",")
		b.WriteString(assTime(start + c.Dur))
		b.WriteString(",")
		b.WriteString(style)
		b.WriteString(",,0,0,0,,")
		b.WriteString(sanitizeASS(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader() string {
	return strings.TrimSpace(fmt.Sprintf(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Center, DejaVu Sans, 28, &H00FFFFFF, &H00FFFFFF, &H00000000, &H00000000, 1,0,0,0,100,100,0,0,1,2,1,5, 10,10,10,1
Style: Bottom, DejaVu Sans, 28, &H00FFFFFF, &H00FFFFFF, &H00000000, &H4B000000, 1,0,0,0,100,100,0,0,3,2,0,2, 10,10,60,1
`, PlayResX, PlayResY))
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
