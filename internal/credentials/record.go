// File: internal/credentials/record.go
package credentials

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew mirrors the clock skew google-auth applies before treating an
// access token as expired.
const expirySkew = 10 * time.Second

// Canonical persisted expiry encoding: RFC 3339 UTC with fractional seconds.
const expiryLayout = "2006-01-02T15:04:05.999999Z"

// Legacy persisted forms the loader still accepts. Older blobs carry either a
// trailing-"Z" UTC timestamp (with or without fractional seconds), a generic
// RFC 3339 offset form, or a zone-naive timestamp that is implicitly UTC.
var legacyExpiryLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Record is the OAuth credential bundle needed to call the calendar API on a
// user's behalf. Field names in the persisted JSON follow the Google
// credential vocabulary so blobs are interchangeable with other tooling.
type Record struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"-"`
}

// persistedRecord is the on-disk shape of Record; expiry travels as a string
// so legacy encodings can be normalized on load.
type persistedRecord struct {
	Record
	Expiry string `json:"expiry,omitempty"`
}

// NormalizeExpiry parses any of the supported textual expiry encodings and
// returns the instant as canonical UTC. Downstream expiry comparisons are
// format-sensitive, so every load path goes through here.
func NormalizeExpiry(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty expiry value")
	}
	for _, layout := range legacyExpiryLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported expiry format %q", value)
}

// ToPersisted serializes the record to its canonical JSON blob.
func (r *Record) ToPersisted() (string, error) {
	if r == nil || r.AccessToken == "" {
		return "", fmt.Errorf("credential record has no access token to serialize")
	}
	p := persistedRecord{Record: *r}
	if !r.Expiry.IsZero() {
		p.Expiry = r.Expiry.UTC().Format(expiryLayout)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize credential record: %w", err)
	}
	return string(raw), nil
}

// FromPersisted parses a stored blob back into a Record, normalizing the
// expiry encoding. Structural problems are returned as errors; the caller
// decides whether to treat them as absence.
func FromPersisted(blob string) (*Record, error) {
	var p persistedRecord
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("credential blob is not valid JSON: %w", err)
	}
	rec := p.Record
	if p.Expiry != "" {
		expiry, err := NormalizeExpiry(p.Expiry)
		if err != nil {
			return nil, fmt.Errorf("credential blob has malformed expiry: %w", err)
		}
		rec.Expiry = expiry
	}
	if rec.AccessToken == "" {
		return nil, fmt.Errorf("credential blob is missing the access token field")
	}
	return &rec, nil
}

// Expired reports whether the access token is past (or within the skew
// window of) its expiry. A record without an expiry never counts as expired.
func (r *Record) Expired() bool {
	if r.Expiry.IsZero() {
		return false
	}
	return !time.Now().UTC().Before(r.Expiry.Add(-expirySkew))
}

// Valid recomputes usability on every call; validity depends on the clock so
// it is never cached. A record is valid when it is structurally well-formed
// and its access token has not expired.
func (r *Record) Valid() bool {
	return r != nil && r.AccessToken != "" && !r.Expired()
}

// Refreshable reports whether an expired record can still be recovered
// without user interaction. Expired with no refresh token means the record
// is unusable and re-authorization is required.
func (r *Record) Refreshable() bool {
	return r != nil && r.RefreshToken != ""
}

// Token converts the record to an oauth2.Token for use with token sources
// and API clients.
func (r *Record) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       r.Expiry,
	}
}

// FieldNames lists which logical fields are present, for diagnostics that
// must not leak token values.
func (r *Record) FieldNames() []string {
	fields := make([]string, 0, 6)
	if r.AccessToken != "" {
		fields = append(fields, "token")
	}
	if r.RefreshToken != "" {
		fields = append(fields, "refresh_token")
	}
	if r.TokenURI != "" {
		fields = append(fields, "token_uri")
	}
	if r.ClientID != "" {
		fields = append(fields, "client_id")
	}
	if r.ClientSecret != "" {
		fields = append(fields, "client_secret")
	}
	if !r.Expiry.IsZero() {
		fields = append(fields, "expiry")
	}
	return fields
}
