package llm

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/courseforge/course-engine/internal/domain"
)

// Decode extracts the first balanced JSON object or array embedded in raw
// model output and unmarshals it into v, which must be a pointer to a struct
// or map (object shape) or to a slice (array shape). On a parse failure a
// best-effort repair pass runs once before giving up. The repair pass only
// targets malformations actually observed from models: wrong quote style,
// trailing commas, unquoted keys, and bare unquoted scalar values. It is not
// a general JSON fixer.
func Decode(raw string, v any) error {
	shape := expectedShape(v)

	fragment, ok := firstBalanced(raw, shape)
	if !ok {
		return domain.FormatError("no JSON "+shape+" found in model output", nil)
	}

	if err := json.Unmarshal([]byte(fragment), v); err == nil {
		return nil
	}

	repaired := Repair(fragment)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return domain.FormatError("model output is not a valid JSON "+shape, err)
	}

	return nil
}

// expectedShape derives the JSON shape from the decode target.
func expectedShape(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Slice {
		return "array"
	}
	return "object"
}

// firstBalanced locates the first opening bracket of the expected kind and
// greedily matches it to the last closing bracket.
func firstBalanced(raw, shape string) (string, bool) {
	opening, closing := "{", "}"
	if shape == "array" {
		opening, closing = "[", "]"
	}

	start := strings.Index(raw, opening)
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(raw, closing)
	if end <= start {
		return "", false
	}

	return raw[start : end+1], true
}

var (
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	bareValueRe     = regexp.MustCompile(`(:\s*)([A-Za-z_][A-Za-z0-9_ .-]*[A-Za-z0-9_])(\s*[,}\]])`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	curlyQuotes     = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
)

// Repair rewrites the malformation patterns models are known to emit. The
// bare-value rule can mangle legitimate strings that look like bare words;
// that risk is accepted because Repair only runs after a strict parse failed.
func Repair(s string) string {
	s = curlyQuotes.Replace(s)
	s = strings.ReplaceAll(s, "'", `"`)

	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)

	s = bareValueRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := bareValueRe.FindStringSubmatch(match)
		word := parts[2]
		switch strings.ToLower(word) {
		case "true", "false", "null":
			return match
		}
		return parts[1] + `"` + word + `"` + parts[3]
	})

	s = trailingCommaRe.ReplaceAllString(s, `$1`)

	return s
}
