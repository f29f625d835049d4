package analysis

import "fmt"

// WordsPerMinute returns 0 for a non-positive duration.
func WordsPerMinute(totalWords int, durationSec float64) float64 {
	if durationSec <= 0 {
		return 0
	}
	return float64(totalWords) / durationSec * 60
}

func paceFeedback(wpm float64) string {
	return fmt.Sprintf("Pace: %.2f words per minute.", wpm)
}
