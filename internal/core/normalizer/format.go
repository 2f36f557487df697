package normalizer

import (
	"fmt"
	"strconv"
)

// FormatConfidence renders a [0,1] score as a percentage with one decimal.
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

// FormatBytes renders a size with thousands separators, e.g. "12,345 bytes".
func FormatBytes(size int64) string {
	digits := strconv.FormatInt(size, 10)
	neg := false
	if size < 0 {
		neg = true
		digits = digits[1:]
	}

	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	if neg {
		return "-" + string(out) + " bytes"
	}
	return string(out) + " bytes"
}
