package tenants

import (
	"golang.org/x/crypto/bcrypt"
)

// Tenant represents an authenticated client scoped to an exclusive key
// namespace in the shared object store. Every object key the tenant may
// observe starts with Prefix.
type Tenant struct {
	ID         string `json:"id" yaml:"id"`
	SecretHash string `json:"-" yaml:"secret_hash"` // bcrypt digest - never serialize
	Prefix     string `json:"prefix" yaml:"prefix"`
}

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckSecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
