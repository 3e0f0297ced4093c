package session

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials is the JSON credentials file read by the console binary and
// written back after each successful authentication with the updated
// session fields (§6 of the spec).
type Credentials struct {
	Hostname     string  `json:"hostname"`
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	SessionIndex *uint32 `json:"session_index,omitempty"`
	SessionKey   *string `json:"session_key,omitempty"`
	Cookie       *string `json:"cookie,omitempty"`
}

// LoadCredentials reads and JSON-decodes the credentials file at path.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("session: reading credentials file %q: %w", path, err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("session: parsing credentials file %q: %w", path, err)
	}
	return c, nil
}

// Save JSON-encodes c and writes it back to path, preserving the updated
// session fields after a successful authentication.
func (c Credentials) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encoding credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("session: writing credentials file %q: %w", path, err)
	}
	return nil
}
