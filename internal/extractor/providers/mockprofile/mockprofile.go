// A mock provider for development and testing purposes. It simulates the
// extraction API without making network calls, scripting its behavior from
// markers in the profile URL:
//
//	"missing"     -> not_found on every attempt
//	"restricted"  -> access_restricted on every attempt
//	"captcha"     -> captcha on every attempt
//	"ratelimited" -> rate_limit on every attempt
//	"flaky-N"     -> rate_limit for the first N attempts, then success
//
// Anything else succeeds with a deterministic fake profile.
package mockprofile

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/models"
)

type MockProfileProvider struct {
	mu           sync.Mutex
	attempts     map[string]int
	attemptTimes map[string][]time.Time
}

func New() *MockProfileProvider {
	return &MockProfileProvider{
		attempts:     make(map[string]int),
		attemptTimes: make(map[string][]time.Time),
	}
}

func (p *MockProfileProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "mockprofile",
		Name: "MockProfile",
	}
}

// RequiresAuth mirrors the real API provider so the credential path is
// exercised in tests.
func (p *MockProfileProvider) RequiresAuth() bool { return true }

// Attempts returns how many times a URL has been tried so far.
func (p *MockProfileProvider) Attempts(profileURL string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts[profileURL]
}

// AttemptTimes returns the timestamp of each attempt for a URL, in order.
// Tests use the gaps between them to observe retry delays.
func (p *MockProfileProvider) AttemptTimes(profileURL string) []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.attemptTimes[profileURL]...)
}

func (p *MockProfileProvider) ExtractProfile(profileURL, accessToken string) (*models.ProfileData, error) {
	p.mu.Lock()
	p.attempts[profileURL]++
	attempt := p.attempts[profileURL]
	p.attemptTimes[profileURL] = append(p.attemptTimes[profileURL], time.Now())
	p.mu.Unlock()

	switch {
	case strings.Contains(profileURL, "missing"):
		return nil, providers.NewError(providers.KindNotFound, "profile not found: %s", profileURL)
	case strings.Contains(profileURL, "restricted"):
		return nil, providers.NewError(providers.KindAccessRestricted, "access restricted: %s", profileURL)
	case strings.Contains(profileURL, "captcha"):
		return nil, providers.NewError(providers.KindCaptcha, "challenge served: %s", profileURL)
	case strings.Contains(profileURL, "ratelimited"):
		return nil, providers.NewError(providers.KindRateLimit, "rate limited: %s", profileURL)
	}

	if n, ok := flakyThreshold(profileURL); ok && attempt <= n {
		return nil, providers.NewError(providers.KindRateLimit, "rate limited (attempt %d): %s", attempt, profileURL)
	}

	slug := profileURL
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	return &models.ProfileData{
		FirstName: "Mock",
		LastName:  capitalize(slug),
		Headline:  fmt.Sprintf("Senior Mock Engineer (%s)", slug),
		Location:  "Mockville",
		Summary:   "A deterministic profile for testing.",
		Positions: []models.Position{
			{Title: "Senior Mock Engineer", Company: "Mock Corp", StartDate: "2020-01"},
		},
		Education: []models.Education{
			{School: "Mock University", Degree: "BSc"},
		},
		Skills: []string{"mocking", "testing"},
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// flakyThreshold parses the N out of a "flaky-N" URL marker.
func flakyThreshold(profileURL string) (int, bool) {
	idx := strings.Index(profileURL, "flaky-")
	if idx == -1 {
		return 0, false
	}
	rest := profileURL[idx+len("flaky-"):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
