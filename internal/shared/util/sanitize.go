package util

import (
	"errors"
	"regexp"
	"strings"
)

// objectKeyPattern is the downstream contract for object-store keys.
var objectKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_/.]+$`)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// ValidObjectKey reports whether key satisfies the object-store key contract.
func ValidObjectKey(key string) bool {
	return key != "" && objectKeyPattern.MatchString(key)
}
