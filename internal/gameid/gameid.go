// Package gameid generates identifiers for hands and sessions. IDs are
// UUIDv7 values rendered as 26 characters of Crockford base32, which
// makes them URL-safe and sortable by creation time.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Entropy supplies the random tail of an ID. Injected in tests.
type Entropy interface {
	Read(p []byte) (int, error)
}

// Generator builds IDs with a configurable entropy source.
type Generator struct {
	entropy Entropy
}

// NewGenerator returns a Generator. A nil entropy source means
// crypto/rand.
func NewGenerator(entropy Entropy) *Generator {
	return &Generator{entropy: entropy}
}

// New returns a fresh ID using crypto/rand entropy.
func New() string {
	return NewGenerator(nil).New()
}

// New returns a fresh ID from the generator's entropy source.
func (g *Generator) New() string {
	var u [16]byte

	// 48-bit millisecond timestamp, then version 7 and the RFC 4122
	// variant over random bytes.
	now := time.Now().UnixMilli()
	u[0] = byte(now >> 40)
	u[1] = byte(now >> 32)
	u[2] = byte(now >> 24)
	u[3] = byte(now >> 16)
	u[4] = byte(now >> 8)
	u[5] = byte(now)

	src := g.entropy
	if src == nil {
		src = rand.Reader
	}
	if _, err := src.Read(u[6:]); err != nil {
		panic("gameid: entropy source failed: " + err.Error())
	}

	u[6] = (u[6] & 0x0f) | 0x70
	u[8] = (u[8] & 0x3f) | 0x80

	return encode(u)
}

// encode renders 128 bits as 26 base32 characters (130 bits with the
// trailing two bits zero).
func encode(data [16]byte) string {
	var out [26]byte
	var acc uint32
	bits := 0
	pos := 0

	for i := 0; i < 26; i++ {
		for bits < 5 {
			acc <<= 8
			if pos < len(data) {
				acc |= uint32(data[pos])
				pos++
			}
			bits += 8
		}
		out[i] = alphabet[(acc>>(uint(bits)-5))&0x1f]
		bits -= 5
	}
	return string(out[:])
}

// Validate checks that id is a well-formed identifier.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("id must be 26 characters, got %d", len(id))
	}
	// 130 encoded bits carry only 128 of data, so the first character
	// cannot exceed '7'.
	if id[0] > '7' {
		return fmt.Errorf("id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
