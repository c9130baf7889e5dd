package cache

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// KeyBuilder folds request parts into a 64-bit xxhash fingerprint. Every
// part is length- or type-delimited so "ab"+"c" and "a"+"bc" differ.
type KeyBuilder struct {
	d   *xxhash.Digest
	buf [9]byte
}

// NewKeyBuilder starts an empty fingerprint
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{d: xxhash.New()}
}

func (b *KeyBuilder) word(tag byte, v uint64) {
	b.buf[0] = tag
	binary.LittleEndian.PutUint64(b.buf[1:], v)
	_, _ = b.d.Write(b.buf[:])
}

// String adds s
func (b *KeyBuilder) String(s string) *KeyBuilder {
	b.word('s', uint64(len(s)))
	_, _ = b.d.WriteString(s)
	return b
}

// Int adds v
func (b *KeyBuilder) Int(v int) *KeyBuilder {
	b.word('i', uint64(v))
	return b
}

// Float adds v by its bit pattern
func (b *KeyBuilder) Float(v float64) *KeyBuilder {
	b.word('f', math.Float64bits(v))
	return b
}

// Floats adds a length-prefixed series
func (b *KeyBuilder) Floats(values []float64) *KeyBuilder {
	b.word('F', uint64(len(values)))
	for _, v := range values {
		b.word('f', math.Float64bits(v))
	}
	return b
}

// Time adds t at nanosecond precision
func (b *KeyBuilder) Time(t time.Time) *KeyBuilder {
	b.word('t', uint64(t.UnixNano()))
	return b
}

// Duration adds d
func (b *KeyBuilder) Duration(d time.Duration) *KeyBuilder {
	b.word('d', uint64(d))
	return b
}

// Sum returns the fingerprint
func (b *KeyBuilder) Sum() uint64 {
	return b.d.Sum64()
}
