package secrets

import (
	"crypto/sha256"
	"encoding/hex"
)

// Masking styles.
const (
	StyleFull    = "full"
	StylePartial = "partial"
	StyleHash    = "hash"
)

// Masking controls how a secret is rendered.
type Masking struct {
	Style            string `yaml:"style" mapstructure:"style"`
	PartialShowChars int    `yaml:"partial_show_chars" mapstructure:"partial_show_chars"`
	Replacement      string `yaml:"replacement" mapstructure:"replacement"`
}

// DefaultMasking fully masks values.
func DefaultMasking() *Masking {
	return &Masking{Style: StyleFull, Replacement: "***"}
}

// MaskValue masks a sensitive value using the configured style. A nil config
// shows the first 6 characters, like partial masking.
func MaskValue(value string, config *Masking) string {
	if config == nil {
		return partialMask(value, 6, "***")
	}

	switch config.Style {
	case StyleFull:
		return fullMask(config.Replacement)
	case StyleHash:
		return hashMask(value)
	default:
		return partialMask(value, config.PartialShowChars, config.Replacement)
	}
}

func fullMask(replacement string) string {
	if replacement == "" {
		return "***"
	}
	return replacement
}

// partialMask shows the first showChars runes and masks the rest.
func partialMask(value string, showChars int, replacement string) string {
	if replacement == "" {
		replacement = "***"
	}
	runes := []rune(value)
	if len(runes) <= showChars {
		return replacement
	}
	return string(runes[:showChars]) + replacement
}

// hashMask returns a short SHA256 fingerprint, useful for correlating a
// secret across outputs without revealing it.
func hashMask(value string) string {
	hash := sha256.Sum256([]byte(value))
	return "sha256:" + hex.EncodeToString(hash[:])[:16]
}
