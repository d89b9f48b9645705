// internal/accounts/token.go
package accounts

import (
	"crypto/rand"
	"encoding/base64"
)

// newToken generates an opaque bearer token. The value is returned to the
// client exactly once at issuance.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
