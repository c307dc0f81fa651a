// Package geo approximates the country of a client. The external lookup is
// the only source of an IP address; every fallback reports a nil IP.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/kkkkikiki/dealswipe/internal/metrics"
)

const (
	// DefaultTimeout bounds the external lookup
	DefaultTimeout = 1500 * time.Millisecond

	UnknownCountry     = "Unknown"
	UnknownCountryCode = "XX"
)

// Source names the tier of the fallback chain that produced a Location
type Source string

const (
	SourceIPAPI    Source = "ip_api"
	SourceTimezone Source = "timezone"
	SourceRegion   Source = "region"
	SourceLanguage Source = "language"
	SourceUnknown  Source = "unknown"
)

// Location is the resolved client location
type Location struct {
	IP          *string `json:"ip"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Source      Source  `json:"-"`
}

// Unknown is the terminal result of the fallback chain
func Unknown() Location {
	return Location{Country: UnknownCountry, CountryCode: UnknownCountryCode, Source: SourceUnknown}
}

// Runtime exposes what the client runtime knows about itself
type Runtime interface {
	// Timezone is the resolved IANA zone, e.g. "Europe/Berlin"
	Timezone() string
	// Language is the primary BCP 47 tag, e.g. "en-GB"
	Language() string
	// ClientIP is the address to look up; empty means the caller's own.
	ClientIP() string
}

// StaticRuntime is a Runtime with fixed values
type StaticRuntime struct {
	TZ   string
	Lang string
	IP   string
}

func (r StaticRuntime) Timezone() string { return r.TZ }
func (r StaticRuntime) Language() string { return r.Lang }
func (r StaticRuntime) ClientIP() string { return r.IP }

// Resolver runs the fallback chain
type Resolver struct {
	endpoint  string
	timeout   time.Duration
	client    *http.Client
	enabled   bool
	requireIP bool
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHTTPClient replaces the HTTP client used for the external lookup
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithoutLookup disables the external lookup entirely
func WithoutLookup() Option {
	return func(r *Resolver) { r.enabled = false }
}

// RequireClientIP skips the external lookup when the runtime reports no
// client address. Servers use it so the lookup never returns their own IP.
func RequireClientIP() Option {
	return func(r *Resolver) { r.requireIP = true }
}

// NewResolver creates a resolver querying endpoint (ipapi.co compatible).
func NewResolver(endpoint string, opts ...Option) *Resolver {
	r := &Resolver{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  DefaultTimeout,
		client:   &http.Client{},
		enabled:  endpoint != "",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails and returns within the lookup timeout plus the time
// of the in-memory fallbacks.
func (r *Resolver) Resolve(ctx context.Context, rt Runtime) Location {
	loc := r.resolve(ctx, rt)
	metrics.RecordGeoResolution(string(loc.Source))
	return loc
}

func (r *Resolver) resolve(ctx context.Context, rt Runtime) Location {
	if rt == nil {
		rt = StaticRuntime{}
	}
	if r.enabled && (!r.requireIP || rt.ClientIP() != "") {
		loc, err := r.lookup(ctx, rt.ClientIP())
		if err == nil {
			return loc
		}
		slog.Debug("IP geolocation failed, using fallbacks", "error", err)
	}
	if loc, ok := FromTimezone(rt.Timezone()); ok {
		return loc
	}
	if loc, ok := FromLanguage(rt.Language()); ok {
		return loc
	}
	return Unknown()
}

type ipAPIResponse struct {
	IP          string `json:"ip"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

func (r *Resolver) lookup(ctx context.Context, clientIP string) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url := r.endpoint + "/json/"
	if clientIP != "" {
		url = r.endpoint + "/" + clientIP + "/json/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Location{}, fmt.Errorf("geolocation status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Location{}, fmt.Errorf("failed to read geolocation response: %w", err)
	}
	var payload ipAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, fmt.Errorf("malformed geolocation response: %w", err)
	}
	if payload.Error {
		return Location{}, fmt.Errorf("geolocation service error: %s", payload.Reason)
	}
	if !ValidIP(payload.IP) {
		return Location{}, fmt.Errorf("geolocation response has invalid ip %q", payload.IP)
	}

	ip := payload.IP
	loc := Location{IP: &ip, Country: payload.CountryName, CountryCode: strings.ToUpper(payload.CountryCode), Source: SourceIPAPI}
	if loc.CountryCode == "" && len(payload.Country) == 2 {
		loc.CountryCode = strings.ToUpper(payload.Country)
	}
	if loc.Country == "" {
		loc.Country = UnknownCountry
	}
	if loc.CountryCode == "" {
		loc.CountryCode = UnknownCountryCode
	}
	return loc, nil
}

// ValidIP reports whether s is a usable IPv4 or IPv6 address
func ValidIP(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unknown") {
		return false
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

// FromTimezone maps an IANA zone to a country, falling back to a coarse
// region label for unmapped zones of a known area.
func FromTimezone(tz string) (Location, bool) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return Location{}, false
	}
	if c, ok := timezoneCountries[tz]; ok {
		return Location{Country: c.name, CountryCode: c.code, Source: SourceTimezone}, true
	}
	area, _, found := strings.Cut(tz, "/")
	if !found {
		return Location{}, false
	}
	if label, ok := regionLabels[area]; ok {
		return Location{Country: label, CountryCode: UnknownCountryCode, Source: SourceRegion}, true
	}
	return Location{}, false
}

// FromLanguage maps a language tag to a country using the static table,
// then the region subtag of the tag itself.
func FromLanguage(lang string) (Location, bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Location{}, false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return Location{}, false
	}
	base, _ := tag.Base()
	region, conf := tag.Region()

	if conf == language.Exact {
		if c, ok := languageCountries[base.String()+"-"+region.String()]; ok {
			return Location{Country: c.name, CountryCode: c.code, Source: SourceLanguage}, true
		}
		if region.IsCountry() {
			name := display.English.Regions().Name(region)
			if name != "" {
				return Location{Country: name, CountryCode: region.String(), Source: SourceLanguage}, true
			}
		}
	}
	if c, ok := languageCountries[base.String()]; ok {
		return Location{Country: c.name, CountryCode: c.code, Source: SourceLanguage}, true
	}
	return Location{}, false
}
