// Package providers defines the extraction provider interface and a global
// registry, so the worker can resolve a provider by its ID.
package providers

import (
	"sync"

	"github.com/prospectr/prospectr-go/internal/models"
)

// Provider is one external extraction capability: given a profile URL and a
// credential, it returns a structured profile record or a classified error.
type Provider interface {
	GetInfo() models.ProviderInfo
	// RequiresAuth reports whether extraction needs a stored access token.
	RequiresAuth() bool
	ExtractProfile(profileURL, accessToken string) (*models.ProfileData, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Provider)
)

// Register adds a provider to the registry, keyed by its ID.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.GetInfo().ID] = p
}

// Get returns the provider with the given ID.
func Get(id string) (Provider, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[id]
	return p, ok
}

// GetAll returns info for every registered provider.
func GetAll() []models.ProviderInfo {
	mu.RLock()
	defer mu.RUnlock()
	var infos []models.ProviderInfo
	for _, p := range registry {
		infos = append(infos, p.GetInfo())
	}
	return infos
}

// UnregisterAll clears the registry. Used by tests.
func UnregisterAll() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Provider)
}
