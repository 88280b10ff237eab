package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// RedactOptions extends the built-in scrub rules.
type RedactOptions struct {
	// MaskHeaders are header names whose values are replaced wholesale.
	MaskHeaders []string
	// MaskParams are query parameters whose values are replaced wholesale.
	MaskParams []string
}

// UUIDs go first so the looser phone pattern cannot eat their digit groups.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\+?\d(?:[ .\-()]?\d){8,}`)
	ipv4RE  = regexp.MustCompile(`\b(\d{1,3}\.\d{1,3}\.\d{1,3})\.\d{1,3}\b`)
)

// Redactor scrubs identifiers from strings that end up in access logs.
type Redactor struct {
	headers map[string]struct{}
	params  map[string]struct{}
}

// NewRedactor builds a Redactor. Authorization, cookies and the webhook
// verify token are always masked.
func NewRedactor(opts RedactOptions) *Redactor {
	r := &Redactor{
		headers: map[string]struct{}{"authorization": {}, "cookie": {}, "set-cookie": {}, "x-hub-signature-256": {}},
		params:  map[string]struct{}{"hub.verify_token": {}, "access_token": {}, "token": {}},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.headers[h] = struct{}{}
		}
	}
	for _, p := range opts.MaskParams {
		if p = strings.TrimSpace(p); p != "" {
			r.params[p] = struct{}{}
		}
	}
	return r
}

// Scrub replaces ids, emails and phone numbers in s. IPv4 addresses keep
// their first three octets.
func (r *Redactor) Scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	if ipv4RE.MatchString(s) {
		return ipv4RE.ReplaceAllString(s, "$1.x")
	}
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Query masks sensitive parameters and scrubs the rest. An unparsable query
// is scrubbed as a whole.
func (r *Redactor) Query(raw string) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return r.Scrub(raw)
	}
	for k, vs := range vals {
		_, mask := r.params[k]
		for i, v := range vs {
			if mask {
				vs[i] = "[REDACTED]"
			} else {
				vs[i] = r.Scrub(v)
			}
		}
	}
	return vals.Encode()
}

// Headers flattens h into a loggable map with sensitive values masked.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.headers[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.Scrub(strings.Join(vv, ", "))
	}
	return out
}
