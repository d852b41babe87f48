package postgres

// NullString maps an empty string to SQL NULL.
func NullString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// StringValue maps SQL NULL to an empty string.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
