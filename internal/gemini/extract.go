package gemini

import (
	"strings"

	"github.com/tidwall/gjson"
)

type textShape struct {
	name    string
	extract func(doc gjson.Result) string
}

// textShapes lists every response layout we know how to read, most specific
// first. The first shape yielding non-blank text wins.
var textShapes = []textShape{
	{name: "candidates.content.parts", extract: joinedParts("candidates.0.content.parts")},
	{name: "candidates.output", extract: stringAt("candidates.0.output")},
	{name: "candidates.text", extract: stringAt("candidates.0.text")},
	{name: "output.content.text", extract: stringAt("output.0.content.text")},
	{name: "output.content.parts", extract: joinedParts("output.0.content")},
	{name: "text", extract: stringAt("text")},
}

// ExtractText returns the generated text from an upstream response body. The
// boolean is false when the body is not JSON or no known shape carries text.
func ExtractText(body []byte) (string, bool) {
	text, _, ok := ExtractShape(body)
	return text, ok
}

// ExtractShape is ExtractText but also names the shape that matched.
func ExtractShape(body []byte) (text, shape string, ok bool) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return "", "", false
	}
	doc := gjson.ParseBytes(body)
	for _, s := range textShapes {
		if text := s.extract(doc); strings.TrimSpace(text) != "" {
			return text, s.name, true
		}
	}
	return "", "", false
}

func stringAt(path string) func(gjson.Result) string {
	return func(doc gjson.Result) string {
		r := doc.Get(path)
		if r.Type != gjson.String {
			return ""
		}
		return r.Str
	}
}

func joinedParts(path string) func(gjson.Result) string {
	return func(doc gjson.Result) string {
		parts := doc.Get(path)
		if !parts.IsArray() {
			return ""
		}
		var b strings.Builder
		for _, part := range parts.Array() {
			if text := part.Get("text"); text.Type == gjson.String {
				b.WriteString(text.Str)
			}
		}
		return b.String()
	}
}
