package errors

import (
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits.
const (
	MaxPathLength   = 4096
	MaxPromptLength = 500

	// MaxSeed bounds the magnitude of a global seed so that every derived
	// seed stays exactly representable as a float64.
	MaxSeed = 1 << 40
)

// ValidateInputPath checks that path names a readable regular file.
func ValidateInputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "input path cannot be empty")
	}
	if len(path) > MaxPathLength {
		return New(ErrCodeInvalidInput, "input path too long (max %d characters)", MaxPathLength)
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidInput, "input path contains a null byte")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Wrap(ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "cannot read %s", path)
	}
	if info.IsDir() {
		return New(ErrCodeInvalidInput, "%s is a directory", path)
	}
	return nil
}

// ValidateFormat checks that format is one of valid (case-sensitive).
func ValidateFormat(format string, valid []string) error {
	if slices.Contains(valid, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid format %q (valid: %s)", format, strings.Join(valid, ", "))
}

// ValidateStylePrompt checks a free-text style description. An empty prompt
// is valid and selects the default style.
func ValidateStylePrompt(prompt string) error {
	if !utf8.ValidString(prompt) {
		return New(ErrCodeInvalidStyle, "style prompt is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return New(ErrCodeInvalidStyle, "style prompt too long (%d characters, max %d)", n, MaxPromptLength)
	}
	for _, r := range prompt {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return New(ErrCodeInvalidStyle, "style prompt contains control characters")
		}
	}
	return nil
}

// ValidateSeed checks that a global seed is within [-MaxSeed, MaxSeed].
func ValidateSeed(s int64) error {
	if s > MaxSeed || s < -MaxSeed {
		return New(ErrCodeInvalidSeed, "seed %d out of range (max magnitude %d)", s, int64(MaxSeed))
	}
	return nil
}
