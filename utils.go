package gatepass

import (
	"net/url"
	"strings"
)

// VerifyReference picks the public reference code encoded into a card's QR.
// Precedence: issued accreditation id, then badge number, then the raw
// record id. The verification endpoint resolves codes in the same order.
func VerifyReference(accreditationID, badgeNumber, id string) string {
	if accreditationID != "" {
		return accreditationID
	}
	if badgeNumber != "" {
		return badgeNumber
	}
	return id
}

// VerifyURL composes the verification link for a reference code.
func VerifyURL(origin, ref string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" {
		u = &url.URL{Scheme: "https", Host: origin}
	}
	return strings.TrimRight(u.String(), "/") + "/verify/" + url.PathEscape(ref)
}

// SanitizeFilename strips characters that are unsafe in download filenames
// and collapses whitespace to underscores.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "card"
	}
	return out
}
