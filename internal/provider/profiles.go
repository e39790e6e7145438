package provider

import (
	"net/url"
	"strings"

	"github.com/smmops/panel/internal/config"
)

// Profile describes the transport quirks of one family of provider panels.
// Most panels speak the POST form dialect; the profiles below capture the
// known deviants so the adapter does not have to rediscover them per call.
type Profile struct {
	Name string
	// Match reports whether this profile governs the given panel URL.
	Match func(u *url.URL) bool
	// Method is the preferred HTTP method for API calls.
	Method string
	// PathVariants lists path suffixes to probe for GET-style panels, in
	// priority order. Empty string means the URL as configured.
	PathVariants []string
	// Unwrap indicates responses arrive wrapped in a {data} envelope.
	Unwrap bool
}

// ProfileRegistry resolves a panel URL to its transport profile.
type ProfileRegistry struct {
	profiles []Profile
	fallback Profile
}

// NewProfileRegistry builds the registry with the known panel families.
func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{
		profiles: []Profile{
			{
				Name:         "get-only",
				Match:        hostContains("smmkings"),
				Method:       "GET",
				PathVariants: config.GetPathVariants,
				Unwrap:       true,
			},
			{
				Name:         "versioned",
				Match:        hostContainsAny("justanotherpanel", "peakerr"),
				Method:       "POST",
				PathVariants: []string{"/api/v2", "/api/v1"},
			},
		},
		fallback: Profile{
			Name:   "standard",
			Method: "POST",
		},
	}
}

// Resolve returns the profile governing rawURL. Unparseable URLs get the
// standard profile; the adapter will surface the transport error itself.
func (r *ProfileRegistry) Resolve(rawURL string) Profile {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return r.fallback
	}
	for _, p := range r.profiles {
		if p.Match(u) {
			return p
		}
	}
	return r.fallback
}

func hostContains(fragment string) func(u *url.URL) bool {
	return func(u *url.URL) bool {
		return strings.Contains(strings.ToLower(u.Hostname()), fragment)
	}
}

func hostContainsAny(fragments ...string) func(u *url.URL) bool {
	return func(u *url.URL) bool {
		host := strings.ToLower(u.Hostname())
		for _, f := range fragments {
			if strings.Contains(host, f) {
				return true
			}
		}
		return false
	}
}
