// Package talentlens implements the Provider interface for the TalentLens
// profile API.
package talentlens

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/models"
)

type TalentLensProvider struct {
	client  *http.Client
	baseURL string
}

func New(baseURL string) *TalentLensProvider {
	if baseURL == "" {
		baseURL = "https://api.talentlens.io"
	}
	return &TalentLensProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

func (p *TalentLensProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "talentlens",
		Name: "TalentLens",
	}
}

func (p *TalentLensProvider) RequiresAuth() bool { return true }

// apiProfile mirrors the TalentLens response document.
type apiProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Headline  string `json:"headline"`
	Location  string `json:"location"`
	Summary   string `json:"summary"`
	Positions []struct {
		Title     string `json:"title"`
		Company   string `json:"company"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	} `json:"positions"`
	Education []struct {
		School    string `json:"school"`
		Degree    string `json:"degree"`
		Field     string `json:"field_of_study"`
		StartYear string `json:"start_year"`
		EndYear   string `json:"end_year"`
	} `json:"education"`
	Skills []string `json:"skills"`
}

func (p *TalentLensProvider) ExtractProfile(profileURL, accessToken string) (*models.ProfileData, error) {
	reqURL := fmt.Sprintf("%s/v1/profiles?url=%s", p.baseURL, url.QueryEscape(profileURL))
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("talentlens request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return nil, providers.NewError(providers.KindNotFound, "profile not found: %s", profileURL)
	case http.StatusForbidden:
		return nil, providers.NewError(providers.KindAccessRestricted, "access restricted: %s", profileURL)
	case http.StatusUnauthorized:
		return nil, providers.NewError(providers.KindAccessRestricted, "token rejected by provider")
	case http.StatusTooManyRequests:
		return nil, providers.NewError(providers.KindRateLimit, "rate limited by provider")
	case 999:
		// TalentLens answers 999 when it serves a verification challenge.
		return nil, providers.NewError(providers.KindCaptcha, "verification challenge served for %s", profileURL)
	default:
		return nil, providers.NewError(providers.KindUnknown, "unexpected status %d", resp.StatusCode)
	}

	var doc apiProfile
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode profile response: %w", err)
	}

	profile := &models.ProfileData{
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Headline:  doc.Headline,
		Location:  doc.Location,
		Summary:   doc.Summary,
		Skills:    doc.Skills,
	}
	for _, pos := range doc.Positions {
		profile.Positions = append(profile.Positions, models.Position{
			Title:     pos.Title,
			Company:   pos.Company,
			StartDate: pos.StartDate,
			EndDate:   pos.EndDate,
		})
	}
	for _, edu := range doc.Education {
		profile.Education = append(profile.Education, models.Education{
			School:    edu.School,
			Degree:    edu.Degree,
			FieldOf:   edu.Field,
			StartYear: edu.StartYear,
			EndYear:   edu.EndYear,
		})
	}
	return profile, nil
}
