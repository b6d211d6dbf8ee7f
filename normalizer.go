package seshat

import (
	"strings"

	"github.com/grMLEqomlkkU5Eeinz4brIrOVCUCkJuN/seshat/utils"
)

// Normalizer prepares raw words before they reach the trie core. The core
// stores bytes verbatim, so trimming and case folding belong to this layer.
type Normalizer interface {
	Normalize(word string) string
}

// NormalizerFunc allows plain functions to satisfy the Normalizer interface.
type NormalizerFunc func(word string) string

// Normalize implements Normalizer by invoking the wrapped function.
func (fn NormalizerFunc) Normalize(word string) string {
	return fn(word)
}

// Identity passes words through untouched. It is the default: the word set
// holds exactly the bytes the caller handed over.
var Identity Normalizer = NormalizerFunc(func(word string) string {
	return word
})

// SimpleNormalizer provides a lightweight folding pipeline with optional
// trimming and ASCII lower-casing.
type SimpleNormalizer struct {
	lower      bool
	trim       bool
	customFold func(string) string
}

// SimpleNormalizerOption configures a SimpleNormalizer.
type SimpleNormalizerOption func(*SimpleNormalizer)

// SimpleNormalizerWithLower toggles ASCII lower-casing.
func SimpleNormalizerWithLower(enable bool) SimpleNormalizerOption {
	return func(sn *SimpleNormalizer) {
		sn.lower = enable
	}
}

// SimpleNormalizerWithTrim toggles whitespace trimming.
func SimpleNormalizerWithTrim(enable bool) SimpleNormalizerOption {
	return func(sn *SimpleNormalizer) {
		sn.trim = enable
	}
}

// SimpleNormalizerWithFold installs a custom folding function applied before
// the built-in steps.
func SimpleNormalizerWithFold(fold func(string) string) SimpleNormalizerOption {
	return func(sn *SimpleNormalizer) {
		sn.customFold = fold
	}
}

// NewSimpleNormalizer returns a SimpleNormalizer that trims and lower-cases
// unless configured otherwise.
func NewSimpleNormalizer(opts ...SimpleNormalizerOption) *SimpleNormalizer {
	sn := &SimpleNormalizer{lower: true, trim: true}
	for _, opt := range opts {
		opt(sn)
	}
	return sn
}

// Normalize converts the provided word into its stored form.
func (sn *SimpleNormalizer) Normalize(word string) string {
	if sn.customFold != nil {
		word = sn.customFold(word)
	}
	if sn.trim {
		word = strings.TrimSpace(word)
	}
	if sn.lower {
		word = utils.IfToLower(word)
	}
	return word
}
