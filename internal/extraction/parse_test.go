package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParse_PlainObject(t *testing.T) {
	r, err := Parse(`{"name":"riya sharma","preferredCountry":"russia","city":"new delhi","state":"delhi","neetScore":"650"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Name != "Riya Sharma" || r.PreferredCountry != "Russia" || r.City != "New Delhi" || r.State != "Delhi" {
		t.Fatalf("unexpected fields: %+v", r)
	}
	if r.NeetScore == nil || *r.NeetScore != 650 {
		t.Fatalf("neetScore = %v; want 650", r.NeetScore)
	}
	if r.Enquiry {
		t.Fatalf("no enquiry signal expected")
	}
}

func TestParse_KeepsMixedCase(t *testing.T) {
	r, err := Parse(`{"name":"Mary O'Neil-McDonald","preferredCountry":"USA","city":"New Delhi","state":"UK"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Name != "Mary O'Neil-McDonald" || r.PreferredCountry != "USA" || r.City != "New Delhi" || r.State != "UK" {
		t.Fatalf("cased values rewritten: %+v", r)
	}

	r, _ = Parse(`{"preferredCountry":"  UAE  ","name":"riya SHARMA"}`)
	if r.PreferredCountry != "UAE" || r.Name != "riya SHARMA" {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestParse_CodeFenceAndNumbers(t *testing.T) {
	r, err := Parse("Sure!\n```json\n{\"neetScore\": 612.6, \"state\": \"Texas\", \"enquiry\": true}\n```")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.NeetScore == nil || *r.NeetScore != 613 {
		t.Fatalf("neetScore = %v; want 613", r.NeetScore)
	}
	if r.State != "Texas" || !r.Enquiry {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestParse_Placeholders(t *testing.T) {
	r, err := Parse(`{"name":"...","preferredCountry":"N/A","city":"","state":"unknown","neetScore":"..."}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !r.Empty() {
		t.Fatalf("placeholders should be dropped, got %+v", r)
	}
}

func TestParse_EnquiryAliases(t *testing.T) {
	for _, body := range []string{
		`{"isEnquiry": true}`,
		`{"numberOfEnquiry": 1}`,
		`{"enquiry": "yes"}`,
	} {
		r, err := Parse(body)
		if err != nil {
			t.Fatalf("Parse(%s): %v", body, err)
		}
		if !r.Enquiry {
			t.Fatalf("Parse(%s): enquiry not detected", body)
		}
	}
	r, _ := Parse(`{"numberOfEnquiry": 0, "enquiry": false}`)
	if r.Enquiry {
		t.Fatalf("falsy values must not signal an enquiry")
	}
}

func TestParse_Rejects(t *testing.T) {
	if _, err := Parse("I could not find anything."); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
	if _, err := Parse(`["a"]`); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject for array, got %v", err)
	}
	if _, err := Parse(`{"name": `); err == nil {
		t.Fatalf("expected decode error for truncated JSON")
	}
}

func TestParse_BadScoreIgnored(t *testing.T) {
	r, err := Parse(`{"neetScore": "about six hundred", "city": "pune"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.NeetScore != nil || r.City != "Pune" {
		t.Fatalf("unexpected result: %+v", r)
	}
	r, _ = Parse(`{"neetScore": -5}`)
	if r.NeetScore != nil {
		t.Fatalf("negative score accepted: %v", *r.NeetScore)
	}
}

func TestBuildPrompt_EmbedsText(t *testing.T) {
	p := BuildPrompt(`lead: "I scored 650"`)
	if !strings.Contains(p, `lead: "I scored 650"`) || !strings.Contains(p, `"enquiry"`) {
		t.Fatalf("prompt missing content: %s", p)
	}
}

func TestNoop(t *testing.T) {
	r, err := Noop{}.Extract(context.Background(), "anything")
	if r != nil || err != nil {
		t.Fatalf("Noop = %v, %v", r, err)
	}
	if !r.Empty() {
		t.Fatalf("nil result should be empty")
	}
}

func TestNewGeminiExtractor_RequiresKey(t *testing.T) {
	if _, err := NewGeminiExtractor(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error without api key")
	}
}
