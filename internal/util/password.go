package util

import "golang.org/x/crypto/bcrypt"

// bcrypt cost for stored credentials; raising it only affects new hashes.
const passwordHashCost = 8

// HashPassword returns the bcrypt hash to store for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
