// Package transcript holds transcription results and encodes them into the
// shapes the caller receives.
package transcript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/whisperbridge/engine"
)

// Segment is a span of recognized speech. Start and End are centiseconds.
type Segment struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Text  string `json:"text"`
}

// SegmentResult lists segments in the engine's emission order.
type SegmentResult []Segment

// TokenConfidence is one token with its probability in [0, 1].
type TokenConfidence struct {
	Text        string  `json:"text"`
	Probability float32 `json:"probability"`
}

// TokenConfidenceResult lists tokens grouped by segment, then by position.
type TokenConfidenceResult []TokenConfidence

// ReadSegments walks the segments of the last run on ctx.
func ReadSegments(ctx engine.Context) SegmentResult {
	n := ctx.SegmentCount()
	out := make(SegmentResult, 0, n)
	for i := range n {
		out = append(out, Segment{
			Start: ctx.SegmentStart(i),
			End:   ctx.SegmentEnd(i),
			Text:  ctx.SegmentText(i),
		})
	}
	return out
}

// ReadTokens walks every token of every segment of the last run on ctx.
func ReadTokens(ctx engine.Context) TokenConfidenceResult {
	out := make(TokenConfidenceResult, 0)
	for i := range ctx.SegmentCount() {
		for j := range ctx.TokenCount(i) {
			out = append(out, TokenConfidence{
				Text:        ctx.TokenText(i, j),
				Probability: ctx.TokenProbability(i, j),
			})
		}
	}
	return out
}

// EncodeSegments renders each segment as {start, end, text} with base-10 times.
func EncodeSegments(r SegmentResult) [][]string {
	out := make([][]string, len(r))
	for i, s := range r {
		out[i] = []string{
			strconv.FormatInt(s.Start, 10),
			strconv.FormatInt(s.End, 10),
			s.Text,
		}
	}
	return out
}

// EncodeTokens renders each token as {text, probability}, the probability
// with six decimals.
func EncodeTokens(r TokenConfidenceResult) [][]string {
	out := make([][]string, len(r))
	for i, t := range r {
		out[i] = []string{t.Text, strconv.FormatFloat(float64(t.Probability), 'f', 6, 64)}
	}
	return out
}

// FormatTimestamp renders centiseconds as HH:MM:SS.mmm, or HH:MM:SS,mmm when
// comma is set.
func FormatTimestamp(cs int64, comma bool) string {
	ms := cs * 10
	hr := ms / (1000 * 60 * 60)
	ms -= hr * 1000 * 60 * 60
	mn := ms / (1000 * 60)
	ms -= mn * 1000 * 60
	sec := ms / 1000
	ms -= sec * 1000

	sep := "."
	if comma {
		sep = ","
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hr, mn, sec, sep, ms)
}

// Span is a segment with trimmed text, as handed to script callers.
type Span struct {
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Text string `json:"text"`
}

// Spans converts a result into spans with surrounding whitespace removed.
func Spans(r SegmentResult) []Span {
	out := make([]Span, len(r))
	for i, s := range r {
		out[i] = Span{From: s.Start, To: s.End, Text: strings.TrimSpace(s.Text)}
	}
	return out
}

// Text joins the segment texts into one trimmed transcript.
func (r SegmentResult) Text() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.Text)
	}
	return strings.TrimSpace(b.String())
}
