// Package extraction turns free-form lead conversations into structured
// profile fields (name, preferred country, city, state, NEET score) and an
// enquiry signal, using a generative language model.
package extraction

import (
	"context"
)

// Result holds the fields recovered from a conversation. Empty strings and a
// nil NeetScore mean "not found".
type Result struct {
	Name             string
	PreferredCountry string
	City             string
	State            string
	NeetScore        *int
	Enquiry          bool
}

// Empty reports whether r carries no usable field.
func (r *Result) Empty() bool {
	return r == nil || (r.Name == "" && r.PreferredCountry == "" && r.City == "" &&
		r.State == "" && r.NeetScore == nil && !r.Enquiry)
}

// Extractor extracts structured lead data from text. Implementations return
// (nil, nil) when the model produced nothing usable.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Result, error)
}

// Noop is an Extractor that never finds anything. It is used when no model
// credentials are configured.
type Noop struct{}

// Extract implements Extractor.
func (Noop) Extract(context.Context, string) (*Result, error) { return nil, nil }
