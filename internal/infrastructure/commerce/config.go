package commerce

import "errors"

// BigCommerceConfig holds configuration for the BigCommerce store API.
type BigCommerceConfig struct {
	// StoreHash identifies the store, e.g. "abc123" in
	// https://api.bigcommerce.com/stores/abc123.
	StoreHash string
	// AccessToken is the X-Auth-Token API credential
	AccessToken string
	// ClientID is the X-Auth-Client API credential
	ClientID string
	// APIBaseURL is the API gateway root
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// BigCommerceAPIURL is the production API gateway.
const BigCommerceAPIURL = "https://api.bigcommerce.com"

// Errors for BigCommerce configuration
var (
	ErrConfigMissingStoreHash   = errors.New("bigcommerce: store hash is required")
	ErrConfigMissingAccessToken = errors.New("bigcommerce: access token is required")
	ErrConfigMissingClientID    = errors.New("bigcommerce: client id is required")
)

// NewBigCommerceConfig creates a configuration with defaults.
func NewBigCommerceConfig(storeHash, accessToken, clientID string) *BigCommerceConfig {
	return &BigCommerceConfig{
		StoreHash:      storeHash,
		AccessToken:    accessToken,
		ClientID:       clientID,
		APIBaseURL:     BigCommerceAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration and fills in defaults.
func (c *BigCommerceConfig) Validate() error {
	if c.StoreHash == "" {
		return ErrConfigMissingStoreHash
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.ClientID == "" {
		return ErrConfigMissingClientID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = BigCommerceAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
