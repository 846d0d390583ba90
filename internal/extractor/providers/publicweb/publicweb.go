// Package publicweb implements the Provider interface by scraping public
// profile pages directly. It is a fallback for sources without an API and
// needs no credential.
package publicweb

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/models"
)

type PublicWebProvider struct {
	client *http.Client
}

func New() *PublicWebProvider {
	return &PublicWebProvider{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PublicWebProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "publicweb",
		Name: "Public Web",
	}
}

// RequiresAuth is false: public pages are fetched without a credential.
func (p *PublicWebProvider) RequiresAuth() bool { return false }

func (p *PublicWebProvider) ExtractProfile(profileURL, accessToken string) (*models.ProfileData, error) {
	req, err := http.NewRequest("GET", profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; prospectr/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, providers.NewError(providers.KindNotFound, "page not found: %s", profileURL)
	case http.StatusForbidden:
		return nil, providers.NewError(providers.KindAccessRestricted, "access restricted: %s", profileURL)
	case http.StatusTooManyRequests:
		return nil, providers.NewError(providers.KindRateLimit, "rate limited: %s", profileURL)
	default:
		return nil, providers.NewError(providers.KindUnknown, "unexpected status %d for %s", resp.StatusCode, profileURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	// Challenge interstitials come back with a 200, so detect them from the
	// document itself.
	if doc.Find("#captcha-challenge, form[action*='captcha']").Length() > 0 ||
		strings.Contains(strings.ToLower(doc.Find("title").Text()), "security verification") {
		return nil, providers.NewError(providers.KindCaptcha, "challenge page served for %s", profileURL)
	}

	name := strings.TrimSpace(doc.Find("h1.profile-name, h1[itemprop='name'], h1").First().Text())
	if name == "" {
		return nil, providers.NewError(providers.KindUnknown, "no profile content found at %s", profileURL)
	}
	first, last := splitName(name)

	profile := &models.ProfileData{
		FirstName: first,
		LastName:  last,
		Headline:  strings.TrimSpace(doc.Find(".profile-headline, [itemprop='jobTitle']").First().Text()),
		Location:  strings.TrimSpace(doc.Find(".profile-location, [itemprop='address']").First().Text()),
		Summary:   strings.TrimSpace(doc.Find(".profile-summary, section.summary p").First().Text()),
	}

	doc.Find("section.experience li, .profile-positions li").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".position-title, h3").First().Text())
		company := strings.TrimSpace(s.Find(".position-company, h4").First().Text())
		if title == "" && company == "" {
			return
		}
		profile.Positions = append(profile.Positions, models.Position{
			Title:     title,
			Company:   company,
			StartDate: strings.TrimSpace(s.Find(".date-start, time").First().Text()),
			EndDate:   strings.TrimSpace(s.Find(".date-end, time").Last().Text()),
		})
	})

	doc.Find("section.education li, .profile-education li").Each(func(i int, s *goquery.Selection) {
		school := strings.TrimSpace(s.Find(".school-name, h3").First().Text())
		if school == "" {
			return
		}
		profile.Education = append(profile.Education, models.Education{
			School: school,
			Degree: strings.TrimSpace(s.Find(".degree, h4").First().Text()),
		})
	})

	doc.Find("section.skills li, .profile-skills li").Each(func(i int, s *goquery.Selection) {
		if skill := strings.TrimSpace(s.Text()); skill != "" {
			profile.Skills = append(profile.Skills, skill)
		}
	})

	return profile, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
