package tracking

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

const (
	DefaultPrefix = "BG"
	DefaultLength = 8

	// Upper-case letters and digits without 0/O and 1/I, so numbers survive being read aloud.
	// Its length divides 256, so byte%len(alphabet) is unbiased.
	alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// Generator produces public tracking numbers.
type Generator struct {
	prefix  string
	length  int
	entropy io.Reader
}

type option func(*Generator)

// NewGenerator creates a generator of DefaultPrefix followed by DefaultLength random characters.
func NewGenerator(opts ...option) *Generator {
	g := &Generator{
		prefix:  DefaultPrefix,
		length:  DefaultLength,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithEntropy replaces crypto/rand as the randomness source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEntropy(r io.Reader) option {
	return func(g *Generator) {
		g.entropy = r
	}
}

// WithLength sets the number of random characters.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLength(n int) option {
	return func(g *Generator) {
		if n > 0 {
			g.length = n
		}
	}
}

// Generate returns a new candidate tracking number. Uniqueness is the caller's concern.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		return "", fmt.Errorf("failed to read entropy: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return g.prefix + string(buf), nil
}

// Valid reports whether s looks like a tracking number this generator could produce.
func (g *Generator) Valid(s string) bool {
	if len(s) != len(g.prefix)+g.length || s[:len(g.prefix)] != g.prefix {
		return false
	}
	for _, c := range s[len(g.prefix):] {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}

	return true
}
