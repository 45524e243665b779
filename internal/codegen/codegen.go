// Package codegen produces the short alphabetic codes used throughout
// the system: session codes, participant personal codes and validation
// keys. Collision handling is delegated to the caller through an
// availability probe; the generator itself only bounds the retries.
package codegen

import (
	"crypto/rand"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const digits = "0123456789"

// DefaultLength is the standard code length for sessions, participants
// and validation keys.
const DefaultLength = 3

// DefaultMaxAttempts bounds the uniqueness retry loop before the
// digit-suffix fallback kicks in.
const DefaultMaxAttempts = 1000

// Code returns a code of n uppercase letters drawn from crypto/rand.
func Code(n int) string {
	return random(n, alphabet)
}

// CheckFunc probes whether a candidate code is available in the
// caller's uniqueness scope. Returning an error aborts generation and
// is surfaced unchanged (typically a storage failure).
type CheckFunc func(code string) (bool, error)

// UniqueCode draws candidates of the given length until check accepts
// one or maxAttempts is exhausted. On exhaustion it returns a freshly
// drawn candidate with one random decimal digit appended, without
// probing it again: the fallback trades a small residual collision
// probability for guaranteed termination, and the storage layer's
// uniqueness constraint remains the authority.
func UniqueCode(length, maxAttempts int, check CheckFunc) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for i := 0; i < maxAttempts; i++ {
		code := Code(length)
		ok, err := check(code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return Code(length) + random(1, digits), nil
}

// random fills n positions with characters from the given set. When the
// system randomness source fails (practically never), the current
// nanosecond clock seeds the draw so the call still returns a code.
func random(n int, set string) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		now := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(now >> (uint(i) * 8))
		}
	}
	for i := range b {
		b[i] = set[int(b[i])%len(set)]
	}
	return string(b)
}
