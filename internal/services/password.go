package services

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with bcrypt. It is called at the
// two points where a plaintext enters the system (registration and password
// change) and nowhere else, so a stored hash can never be hashed again.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plaintext against a stored bcrypt hash. It is
// total: malformed hashes simply fail the comparison.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
