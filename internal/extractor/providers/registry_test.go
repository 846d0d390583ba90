package providers_test

import (
	"testing"

	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/models"
)

type stubProvider struct {
	id string
}

func (p *stubProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{ID: p.id, Name: "Stub"}
}
func (p *stubProvider) RequiresAuth() bool { return false }
func (p *stubProvider) ExtractProfile(profileURL, accessToken string) (*models.ProfileData, error) {
	return &models.ProfileData{}, nil
}

func TestRegistry(t *testing.T) {
	t.Cleanup(providers.UnregisterAll)

	providers.Register(&stubProvider{id: "stub1"})
	providers.Register(&stubProvider{id: "stub2"})

	p, ok := providers.Get("stub1")
	if !ok {
		t.Fatal("Expected stub1 to be registered")
	}
	if p.GetInfo().ID != "stub1" {
		t.Errorf("Expected ID 'stub1', got '%s'", p.GetInfo().ID)
	}

	if _, ok := providers.Get("missing"); ok {
		t.Error("Expected lookup of unregistered provider to fail")
	}

	infos := providers.GetAll()
	if len(infos) != 2 {
		t.Errorf("Expected 2 providers, got %d", len(infos))
	}

	providers.UnregisterAll()
	if len(providers.GetAll()) != 0 {
		t.Error("Expected registry to be empty after UnregisterAll")
	}
}
