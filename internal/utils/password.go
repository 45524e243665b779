package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plain password. The cost comes from
// BCRYPT_COST so operators can raise it without a code change; bcrypt
// embeds the cost in the hash, so existing hashes keep verifying.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
