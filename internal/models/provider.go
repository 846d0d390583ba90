package models

// ProviderInfo identifies an extraction provider in API responses.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
