package utils

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// StringOr dereferences p, falling back to def for nil.
func StringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
