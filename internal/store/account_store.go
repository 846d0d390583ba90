package store

import (
	"database/sql"
	"time"

	"github.com/prospectr/prospectr-go/internal/models"
)

// UpsertConnectedAccount stores (or replaces) the credential for a user and
// provider pair.
func (s *Store) UpsertConnectedAccount(userID int64, providerID, accessToken, refreshToken string, tokenExpiry *time.Time) error {
	query := `
        INSERT INTO connected_accounts (user_id, provider_id, access_token, refresh_token, token_expiry, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id, provider_id) DO UPDATE SET
            access_token = excluded.access_token,
            refresh_token = excluded.refresh_token,
            token_expiry = excluded.token_expiry;
    `
	_, err := s.db.Exec(query, userID, providerID, accessToken, refreshToken, tokenExpiry, time.Now())
	return err
}

// GetAccessToken returns the stored access token for a user and provider,
// or an empty string if no account is connected.
func (s *Store) GetAccessToken(userID int64, providerID string) (string, error) {
	var token string
	query := "SELECT access_token FROM connected_accounts WHERE user_id = ? AND provider_id = ?"
	err := s.db.QueryRow(query, userID, providerID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ListConnectedAccounts retrieves all connected accounts for a user.
func (s *Store) ListConnectedAccounts(userID int64) ([]*models.ConnectedAccount, error) {
	query := `
        SELECT user_id, provider_id, access_token, refresh_token, token_expiry, created_at
        FROM connected_accounts WHERE user_id = ? ORDER BY provider_id ASC
    `
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var acc models.ConnectedAccount
		var refresh sql.NullString
		var expiry sql.NullTime
		if err := rows.Scan(&acc.UserID, &acc.ProviderID, &acc.AccessToken, &refresh, &expiry, &acc.CreatedAt); err != nil {
			return nil, err
		}
		acc.RefreshToken = refresh.String
		if expiry.Valid {
			acc.TokenExpiry = &expiry.Time
		}
		accounts = append(accounts, &acc)
	}
	return accounts, nil
}

// DeleteConnectedAccount removes the stored credential for a provider.
func (s *Store) DeleteConnectedAccount(userID int64, providerID string) error {
	_, err := s.db.Exec("DELETE FROM connected_accounts WHERE user_id = ? AND provider_id = ?", userID, providerID)
	return err
}
