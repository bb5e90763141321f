// Package auth persists provider secrets in the system keyring.
package auth

import (
	"errors"
	"fmt"

	"github.com/medley-cli/medley/constant"
	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when the keyring holds no value for a field.
var ErrNotFound = keyring.ErrNotFound

func user(provider, field string) string {
	return fmt.Sprintf("%s.%s", provider, field)
}

// Set stores a secret for the given provider field.
func Set(provider, field, secret string) error {
	return keyring.Set(constant.Medley, user(provider, field), secret)
}

// Get retrieves the secret of a provider field.
func Get(provider, field string) (string, error) {
	return keyring.Get(constant.Medley, user(provider, field))
}

// Lookup is Get with a presence flag; keyring failures are reported as absence.
func Lookup(provider, field string) (string, bool) {
	secret, err := Get(provider, field)
	if err != nil {
		return "", false
	}
	return secret, true
}

// Delete removes a stored secret. Deleting an absent secret is not an error.
func Delete(provider, field string) error {
	err := keyring.Delete(constant.Medley, user(provider, field))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
