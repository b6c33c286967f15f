package output

import (
	"fmt"
	"unicode/utf8"
)

// charsPerToken approximates the character-to-token ratio of code-heavy
// text. Code tends toward 4 chars per token.
const charsPerToken = 4.0

// EstimateTokens approximates the token count of text for model-facing
// surfaces. A heuristic, not a tokenizer.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(utf8.RuneCountInString(text))/charsPerToken + 0.5)
}

// FormatTokenCount renders a token count compactly, using "X.Xk" from a
// thousand upward.
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}
