// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents.
// \uXXXX escapes forming a valid UTF-16 surrogate pair are combined
// into a single rune, as required to decode astral-plane characters.
// Invalid escapes are replaced by the Unicode replacement rune, and
// Unquote also returns false in its bool result in that case, so the caller can attach
// an invalid-escape/invalid-unicode diagnostic to the token that
// contained it (Unquote itself does not fail the decode: the decoded
// text with substitutions is always usable, matching the scanner's
// "never stop" contract).
func Unquote(src mem.RO) ([]byte, bool) {
	dec := make([]byte, 0, src.Len())
	ok := true

	putByte := func(bs ...byte) { dec = append(dec, bs...) }
	putRune := func(r rune) {
		var buf [6]byte
		n := utf8.EncodeRune(buf[:], r)
		dec = append(dec, buf[:n]...)
	}

	for src.Len() != 0 {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			ok = false
			break
		}

		r, n := mem.DecodeRune(src)
		if n == 0 {
			n = 1
		}
		src = src.SliceFrom(n)

		switch r {
		case '"', '\\', '/':
			putByte(byte(r))
		case 'b':
			putByte('\b')
		case 'f':
			putByte('\f')
		case 'n':
			putByte('\n')
		case 'r':
			putByte('\r')
		case 't':
			putByte('\t')
		case 'u':
			hi, hn, herr := readHex4(src)
			if herr != nil {
				putRune(utf8.RuneError)
				ok = false
				break
			}
			src = src.SliceFrom(hn)

			if utf16.IsSurrogate(rune(hi)) {
				// Try to consume a trailing low surrogate to complete the
				// pair. If it's not there, emit the replacement rune for
				// the lone surrogate and continue from where we left off.
				if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
					lo, ln, lerr := readHex4(src.SliceFrom(2))
					if lerr == nil {
						if combined := utf16.DecodeRune(rune(hi), rune(lo)); combined != utf8.RuneError {
							putRune(combined)
							src = src.SliceFrom(2 + ln)
							continue
						}
					}
				}
				putRune(utf8.RuneError)
				ok = false
			} else {
				putRune(rune(hi))
			}
		default:
			putRune(utf8.RuneError)
			ok = false
		}
	}
	return dec, ok
}

// readHex4 parses the 4 hex digits at the front of data. It returns the
// parsed value, the number of bytes consumed (always 4 on success), and
// an error if data is too short or not all hex digits.
func readHex4(data mem.RO) (int64, int, error) {
	if data.Len() < 4 {
		return 0, 0, errors.New("incomplete Unicode escape")
	}
	v, err := parseHex(data.SliceTo(4))
	if err != nil {
		return 0, 0, err
	}
	return v, 4, nil
}

func parseHex(data mem.RO) (int64, error) {
	var v int64
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int64(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int64(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int64(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
