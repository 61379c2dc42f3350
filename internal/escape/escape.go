// SPDX-License-Identifier: MPL-2.0

// Package escape holds the pure encoding and shell-quoting decisions shared
// by the code generator and the opensearch importer. Everything here is
// stateless: the same input always produces the same output, which keeps the
// rendered artifacts byte-for-byte reproducible.
package escape

import (
	"strings"

	"mvdan.cc/sh/v3/pattern"
)

// upperhex is the digit set for percent-encoding. Uppercase matches what
// surfraw's w3_url_of_arg emits at runtime, so compile-time-encoded literals
// and runtime-encoded values never disagree.
const upperhex = "0123456789ABCDEF"

// URLEncode percent-encodes s for use as a URL query parameter value.
// RFC 3986 unreserved characters (ALPHA / DIGIT / "-" / "." / "_" / "~")
// pass through; every other byte becomes %XX.
func URLEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// NeedsQuoting reports whether a literal value must be double-quoted when
// placed in generated shell code. Word splitting is the only hazard for the
// positions we emit literals into, so whitespace is the whole test.
func NeedsQuoting(s string) bool {
	return strings.ContainsAny(s, " \t\n")
}

// ShellWord returns s ready for emission as a shell word: double-quoted when
// it contains whitespace, verbatim otherwise.
func ShellWord(s string) string {
	if NeedsQuoting(s) {
		return `"` + s + `"`
	}
	return s
}

// CasePattern escapes s so that a POSIX case statement matches it as a fixed
// string rather than as a glob pattern.
func CasePattern(s string) string {
	return pattern.QuoteMeta(s, 0)
}
