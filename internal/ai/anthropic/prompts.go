package anthropic

import (
	"fmt"
	"strings"
)

// buildSentimentPrompt asks for a single-word verdict so the reply can be
// parsed without a JSON schema.
func buildSentimentPrompt(testimonial string) string {
	return fmt.Sprintf(`The following text is a customer's testimonial about a product or service.
Decide whether the testimonial is positive or negative.

Respond with exactly one word and nothing else: "true" if the testimonial is positive, "false" if it is negative.

<testimonial>
%s
</testimonial>`, testimonial)
}

// parseVerdict reads the model's one-word reply.
func parseVerdict(reply string) (bool, bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(reply), `".`)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
