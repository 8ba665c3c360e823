package evaluate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in oracle reply")

// ExtractJSONObject returns the first balanced {...} span in s, or "" if there is none.
// Braces inside JSON string literals are ignored.
func ExtractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	end := matchBrace(s, start)
	if end == -1 {
		return ""
	}
	return s[start : end+1]
}

// matchBrace returns the index of the brace closing s[start], or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// rawEvaluation mirrors the reply shape. Pointers distinguish missing fields.
type rawEvaluation struct {
	Suitable        *bool    `json:"suitable"`
	Confidence      *float64 `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	EstimatedEffort string   `json:"estimatedEffort"`
}

// ParseEvaluation extracts and decodes the judgment embedded in an oracle reply.
// Missing suitable/confidence fields are treated as false/0; confidence is clamped to [0, 1].
func ParseEvaluation(reply string) (models.EvaluationResult, error) {
	span := ExtractJSONObject(reply)
	if span == "" {
		return models.EvaluationResult{}, ErrNoJSON
	}

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return models.EvaluationResult{}, fmt.Errorf("malformed evaluation JSON: %w", err)
	}

	result := models.EvaluationResult{
		Reasoning:       raw.Reasoning,
		EstimatedEffort: models.ParseEffort(raw.EstimatedEffort),
	}
	if raw.Suitable != nil {
		result.Suitable = *raw.Suitable
	}
	if raw.Confidence != nil {
		result.Confidence = clamp01(*raw.Confidence)
	}
	return result, nil
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
