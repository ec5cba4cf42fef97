package utils

import (
	"strings"
)

const (
	ModeDev    = "dev"
	ModeNormal = "normal"

	VariantBase       = "base"
	VariantSubmission = "submission"
)

var ValidModes = map[string]bool{
	ModeDev:    true,
	ModeNormal: true,
}

var ValidVariants = map[string]bool{
	VariantBase:       true,
	VariantSubmission: true,
}

// ValidateAndNormalizeMode validates and normalizes a mode string.
// The dashboard's Japanese labels are accepted as aliases.
func ValidateAndNormalizeMode(mode string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case "開発モード":
		normalized = ModeDev
	case "通常モード":
		normalized = ModeNormal
	}
	return normalized, ValidModes[normalized]
}

// ValidateAndNormalizeVariant validates and normalizes a variant string.
func ValidateAndNormalizeVariant(variant string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(variant))
	if normalized == "" {
		normalized = VariantBase
	}
	return normalized, ValidVariants[normalized]
}
