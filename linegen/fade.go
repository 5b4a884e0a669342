package linegen

import "math"

const (
	// MinAlpha keeps the least confident tokens readable.
	MinAlpha = 10000
	MaxAlpha = 65535
)

// Alpha maps a token log probability onto a 16-bit opacity. The mapping is
// non-decreasing in logprob and clamped to [MinAlpha, MaxAlpha].
func Alpha(logprob float64) int {
	if math.IsNaN(logprob) {
		return MinAlpha
	}
	logprob = max(-64, min(64, logprob))

	alpha := int((logprob + 2.0) / 8.0 * 65536.0)
	alpha = int(float64(alpha) / 2.0)
	alpha += 32768
	return max(MinAlpha, min(MaxAlpha, alpha))
}
