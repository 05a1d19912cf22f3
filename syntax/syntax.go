// Package syntax validates OAuth 2.0 protocol elements against the ABNF
// character classes defined in RFC 6749 Appendix A. These are pure
// predicates over strings, used by the engines to reject malformed input
// before any lookup is performed.
package syntax

// ValidClientID reports whether s is a syntactically valid client_id.
func ValidClientID(s string) bool {
	return isVSChar(s)
}

// ValidClientSecret reports whether s is a syntactically valid client secret.
func ValidClientSecret(s string) bool {
	return isVSChar(s)
}

// ValidResponseType reports whether s is a syntactically valid
// response_type value (possibly space-separated, per Appendix A).
func ValidResponseType(s string) bool {
	if !isDigitAlphaUnder(s) {
		return false
	}
	return true
}

// ValidScope reports whether s is a syntactically valid scope value.
func ValidScope(s string) bool {
	return len(s) > 0 && isNQChar(s)
}

// ValidState reports whether s is a syntactically valid state value.
func ValidState(s string) bool {
	return len(s) > 0 && isVSChar(s)
}

// ValidErrorCode reports whether s is a syntactically valid error code.
func ValidErrorCode(s string) bool {
	return len(s) > 0 && isNQSChar(s)
}

// ValidErrorDescription reports whether s is a syntactically valid
// error_description value.
func ValidErrorDescription(s string) bool {
	return len(s) > 0 && isNQSChar(s)
}

// ValidGrantName reports whether s is a syntactically valid grant_type name
// (grant_type may also be a URI; this only checks the name-char variant).
func ValidGrantName(s string) bool {
	return len(s) > 0 && isNameChar(s)
}

// ValidCode reports whether s is a syntactically valid authorization code.
func ValidCode(s string) bool {
	return len(s) > 0 && isVSChar(s)
}

// ValidAccessToken reports whether s is a syntactically valid access token.
func ValidAccessToken(s string) bool {
	return len(s) > 0 && isVSChar(s)
}

// ValidTokenName reports whether s is a syntactically valid token_type name
// (token_type may also be a URI; this only checks the name-char variant).
func ValidTokenName(s string) bool {
	return len(s) > 0 && isNameChar(s)
}

// ValidExpiresIn reports whether s consists entirely of digits.
func ValidExpiresIn(s string) bool {
	return len(s) > 0 && isDigits(s)
}

// ValidUsername reports whether s is a syntactically valid username.
func ValidUsername(s string) bool {
	return isUnicodeCharNoCRLF(s)
}

// ValidPassword reports whether s is a syntactically valid password.
func ValidPassword(s string) bool {
	return isUnicodeCharNoCRLF(s)
}

// ValidRefreshToken reports whether s is a syntactically valid refresh token.
func ValidRefreshToken(s string) bool {
	return len(s) > 0 && isVSChar(s)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// isNameChar matches RFC 6749 Appendix A name-char: "-" / "." / "_" / DIGIT / ALPHA
func isNameCharRune(r rune) bool {
	switch {
	case r == '-' || r == '.' || r == '_':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	default:
		return false
	}
}

func isNameChar(s string) bool {
	for _, r := range s {
		if !isNameCharRune(r) {
			return false
		}
	}
	return true
}

// isDigitAlphaUnder matches RFC 6749 Appendix A: "_" / DIGIT / ALPHA
func isDigitAlphaUnderRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r == '_':
		return true
	default:
		return false
	}
}

func isDigitAlphaUnder(s string) bool {
	for _, r := range s {
		if !isDigitAlphaUnderRune(r) {
			return false
		}
	}
	return true
}

// isVSChar matches RFC 6749 Appendix A VSCHAR: %x20-7E
func isVSCharRune(r rune) bool {
	return r >= 0x20 && r <= 0x7E
}

func isVSChar(s string) bool {
	for _, r := range s {
		if !isVSCharRune(r) {
			return false
		}
	}
	return true
}

// isNQChar matches RFC 6749 Appendix A NQCHAR: %x21 / %x23-5B / %x5D-7E
func isNQCharRune(r rune) bool {
	switch {
	case r == 0x21:
		return true
	case r >= 0x23 && r <= 0x5B:
		return true
	case r >= 0x5D && r <= 0x7E:
		return true
	default:
		return false
	}
}

func isNQChar(s string) bool {
	for _, r := range s {
		if !isNQCharRune(r) {
			return false
		}
	}
	return true
}

// isNQSChar matches RFC 6749 Appendix A NQSCHAR: %x20-21 / %x23-5B / %x5D-7E
func isNQSCharRune(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x21:
		return true
	case r >= 0x23 && r <= 0x5B:
		return true
	case r >= 0x5D && r <= 0x7E:
		return true
	default:
		return false
	}
}

func isNQSChar(s string) bool {
	for _, r := range s {
		if !isNQSCharRune(r) {
			return false
		}
	}
	return true
}

// isUnicodeCharNoCRLF matches RFC 6749 Appendix A UNICODECHARNOCRLF, which
// excludes more than just CR and LF: it is TAB, %x20-7E, %x80-D7FF,
// %xE000-FFFD, %x10000-10FFFF.
func isUnicodeCharNoCRLFRune(r rune) bool {
	switch {
	case r == 0x09:
		return true
	case r >= 0x20 && r <= 0x7E:
		return true
	case r >= 0x80 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

func isUnicodeCharNoCRLF(s string) bool {
	for _, r := range s {
		if !isUnicodeCharNoCRLFRune(r) {
			return false
		}
	}
	return true
}
