package service

import "strings"

// sanitizeText drops invalid UTF-8 and NUL bytes from user input. Postgres
// rejects both in text columns, and both end up in interaction logs.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return s
}
