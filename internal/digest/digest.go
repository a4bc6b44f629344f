// Package digest implements the decode operation: a one-way hash applied a
// fixed number of times, each round hashing the lowercase hex text produced
// by the previous one.
package digest

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "golang.org/x/crypto/blake2b"
	_ "golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "sha256"

// ErrUnavailable means the requested hash is unknown or not linked into the
// binary. Callers treat it as a fatal configuration error.
var ErrUnavailable = errors.New("digest: hash algorithm unavailable")

// ErrInvalidRounds is returned for a negative repeat count.
var ErrInvalidRounds = errors.New("digest: rounds must not be negative")

var algorithms = map[string]crypto.Hash{
	"sha256":      crypto.SHA256,
	"sha512":      crypto.SHA512,
	"sha3-256":    crypto.SHA3_256,
	"blake2b-256": crypto.BLAKE2b_256,
	// Known to the crypto package but not linked in; kept so that asking for
	// it fails as unavailable rather than unknown.
	"md4": crypto.MD4,
}

// Decoder decodes payloads by repeated hashing.
type Decoder struct {
	name   string
	hash   crypto.Hash
	rounds int
}

// New resolves algorithm and returns a decoder that applies it rounds times.
// An empty algorithm selects DefaultAlgorithm.
func New(algorithm string, rounds int) (*Decoder, error) {
	if rounds < 0 {
		return nil, ErrInvalidRounds
	}

	name := strings.ToLower(strings.TrimSpace(algorithm))
	if name == "" {
		name = DefaultAlgorithm
	}

	h, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q (supported: %s)", ErrUnavailable, algorithm, strings.Join(Supported(), ", "))
	}
	if !h.Available() {
		return nil, fmt.Errorf("%w: %q is not linked into this binary", ErrUnavailable, name)
	}

	return &Decoder{name: name, hash: h, rounds: rounds}, nil
}

// Decode applies the hash Rounds() times to input.
func (d *Decoder) Decode(input string) string {
	return d.DecodeN(input, d.rounds)
}

// DecodeN applies the hash n times to input, ignoring the configured rounds.
func (d *Decoder) DecodeN(input string, n int) string {
	out := input
	for i := 0; i < n; i++ {
		out = d.Once(out)
	}
	return out
}

// Once hashes the UTF-8 bytes of input and renders the sum as lowercase hex,
// two characters per byte.
func (d *Decoder) Once(input string) string {
	h := d.hash.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// Algorithm returns the resolved algorithm name.
func (d *Decoder) Algorithm() string {
	return d.name
}

// Rounds returns the configured repeat count.
func (d *Decoder) Rounds() int {
	return d.rounds
}

// Supported lists the algorithm names New accepts and can currently serve.
func Supported() []string {
	names := make([]string, 0, len(algorithms))
	for name, h := range algorithms {
		if h.Available() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
