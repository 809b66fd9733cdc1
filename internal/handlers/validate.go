package handlers

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func validPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// normalizeEmail lowercases and trims; email uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
