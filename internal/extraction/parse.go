package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotObject is returned by Parse when the model output is not a JSON object.
var ErrNotObject = errors.New("extraction: response is not a JSON object")

// placeholders are values models emit for "unknown".
var placeholders = map[string]struct{}{
	"":        {},
	"...":     {},
	"n/a":     {},
	"na":      {},
	"null":    {},
	"none":    {},
	"unknown": {},
}

// Parse decodes a model response into a Result. Markdown code fences are
// stripped, placeholder values are dropped, and name and place fields that
// arrive entirely in lower case are title-cased. Any other casing is kept.
func Parse(text string) (*Result, error) {
	body := stripFences(text)
	if !strings.HasPrefix(body, "{") {
		return nil, ErrNotObject
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("extraction: decode response: %w", err)
	}

	r := &Result{
		Name:             titleField(raw, "name"),
		PreferredCountry: titleField(raw, "preferredCountry"),
		City:             titleField(raw, "city"),
		State:            titleField(raw, "state"),
		NeetScore:        scoreField(raw["neetScore"]),
	}
	for _, k := range []string{"enquiry", "isEnquiry", "numberOfEnquiry"} {
		if truthy(raw[k]) {
			r.Enquiry = true
			break
		}
	}
	return r, nil
}

// stripFences removes a ```json ... ``` (or bare ```) wrapper.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	s = s[start+3:]
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "JSON")
	if end := strings.LastIndex(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

func stringValue(m json.RawMessage) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(m, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if _, skip := placeholders[strings.ToLower(s)]; skip {
		return "", false
	}
	return s, true
}

func titleField(raw map[string]json.RawMessage, key string) string {
	s, ok := stringValue(raw[key])
	if !ok {
		return ""
	}
	if s != strings.ToLower(s) {
		return s
	}
	// Casers are stateful, so one is built per call.
	return cases.Title(language.Und).String(s)
}

// scoreField accepts a JSON number or a numeric string. Fractions are
// rounded; negative scores are rejected.
func scoreField(m json.RawMessage) *int {
	if len(m) == 0 {
		return nil
	}
	var text string
	if s, ok := stringValue(m); ok {
		text = s
	} else {
		var n json.Number
		d := json.NewDecoder(bytes.NewReader(m))
		d.UseNumber()
		if err := d.Decode(&n); err != nil {
			return nil
		}
		text = n.String()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int(math.Round(f))
	return &v
}

func truthy(m json.RawMessage) bool {
	if len(m) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(m, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}
