package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// isoTimestamp renders a time the way the downstream systems received it
// historically: UTC with millisecond precision and a literal Z suffix.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// floatString renders a decimal the way a float64 prints, without an imposed
// scale. "10.5000" on the wire becomes "10.5".
func floatString(d decimal.Decimal) string {
	return strconv.FormatFloat(d.InexactFloat64(), 'f', -1, 64)
}

// digitsOnly strips every non-digit rune from a phone number.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// chunkRunes splits s into consecutive chunks of at most size runes.
func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
