package notify

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// AddCommas groups n in thousands. With includePos, non-negative values get
// a leading '+' so deltas read as signed changes.
func AddCommas(n int64, includePos bool) string {
	s := humanize.Comma(n)
	if includePos && n >= 0 {
		return "+" + s
	}
	return s
}

// round4 rounds to four decimal places.
func round4(f float64) float64 {
	return math.Round(f*10_000) / 10_000
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func signedFloat(f float64) string {
	if f == 0 {
		// drop the sign of -0 so tiny negative moves print as +0
		f = 0
	}
	if f >= 0 {
		return "+" + formatFloat(f)
	}
	return formatFloat(f)
}
