// Package idgen provides pluggable note ID generation.
package idgen

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces time-sortable RFC 9562 UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// NanoID returns a Generator that produces base-36 IDs of the given length.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// Sequence returns a Generator that cycles through ids. Meant for tests.
// It panics when ids is empty.
func Sequence(ids ...string) Generator {
	if len(ids) == 0 {
		panic("idgen: Sequence needs at least one id")
	}
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

// Default is UUIDv7.
var Default Generator = UUIDv7()
