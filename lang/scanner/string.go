package scanner

import (
	"fmt"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/klang/buildscript/lang/token"
)

// shortString scans a single- or double-quoted string literal, including
// any "${ expr }" interpolation holes (spec.md §4.2). lit is the verbatim
// source text; val is the decoded literal value with hole contents elided
// (the parser re-lexes each hole from lit using the returned ranges); ranges
// gives each hole's byte offsets relative to the start of lit.
func (s *Scanner) shortString(opening rune) (lit, val string, ranges []token.Range) {
	// opening quote already consumed, hence the -1
	startOff := s.off - 1
	s.sb.Reset()

	var pendingSurrogate rune
	for {
		cur := s.cur
		if cur == '\n' || cur < 0 {
			s.error(startOff, "string literal not terminated")
			break
		}
		if cur == opening {
			s.advance()
			break
		}
		if cur == '\\' {
			s.advance()
			skip, sur := s.escape(&pendingSurrogate)
			_ = skip
			_ = sur
			continue
		}
		if cur == '$' && s.peek() == '{' {
			s.advance() // consume '$'
			s.advance() // consume '{'
			holeStart := s.off - startOff
			depth := 1
			for depth > 0 {
				if s.cur < 0 {
					s.error(startOff, "unterminated \"${\" interpolation hole")
					break
				}
				switch s.cur {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					s.advance()
				}
			}
			holeEnd := s.off - startOff
			if s.cur == '}' {
				s.advance()
			}
			ranges = append(ranges, token.Range{Begin: token.Pos(holeStart), End: token.Pos(holeEnd)})
			continue
		}
		if pendingSurrogate != 0 {
			s.sb.WriteRune(utf8.RuneError)
			pendingSurrogate = 0
		}
		s.sb.WriteRune(cur)
		s.advance()
	}
	if pendingSurrogate != 0 {
		s.sb.WriteRune(utf8.RuneError)
	}
	return string(s.src[startOff:s.off]), s.sb.String(), ranges
}

var simpleEscapes = [...]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\\': '\\',
	'$':  '$',
	'\'': '\'',
	'"':  '"',
	'\n': '\n',
}

// escape parses an escape sequence whose leading backslash has already been
// consumed, writing the decoded rune(s) to s.sb. It returns whether the
// escape was a line-continuation ("\\\n", nothing written) and updates
// pendingSurrogate for a \u escape that produced one half of a surrogate
// pair.
func (s *Scanner) escape(pendingSurrogate *rune) (lineCont bool, wroteSurrogate bool) {
	startOff := s.off - 1

	if cur := s.cur; s.advanceIf('a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '$', '"', '\'', '\n') {
		if cur == '\n' {
			return true, false
		}
		s.writeStringLitRune(pendingSurrogate, rune(simpleEscapes[cur]))
		return false, false
	}

	illegalOrIncomplete := func() {
		pos := s.off
		msg := fmt.Sprintf("illegal character %#U in escape sequence", s.cur)
		if s.cur < 0 {
			msg = "escape sequence not terminated"
			pos = startOff
		}
		s.error(pos, msg)
	}

	var max, rn uint32
	if s.advanceIf('x') {
		max = 255
		for i := 0; i < 2; i++ {
			if !isHexadecimal(s.cur) {
				illegalOrIncomplete()
				return false, false
			}
			rn = rn*16 + uint32(digitVal(s.cur))
			s.advance()
		}
	} else if s.advanceIf('u') {
		max = unicode.MaxRune
		if s.advanceIf('{') {
			var count int
			for isHexadecimal(s.cur) {
				rn = rn*16 + uint32(digitVal(s.cur))
				s.advance()
				count++
			}
			if !s.advanceIf('}') {
				illegalOrIncomplete()
				return false, false
			}
			if count > 8 {
				s.error(startOff, "escape sequence has too many hexadecimal digits")
				return false, false
			}
		} else {
			for i := 0; i < 4; i++ {
				if !isHexadecimal(s.cur) {
					illegalOrIncomplete()
					return false, false
				}
				rn = rn*16 + uint32(digitVal(s.cur))
				s.advance()
			}
		}
	} else {
		msg := "unknown escape sequence"
		if s.cur < 0 {
			msg = "escape sequence not terminated"
		}
		s.error(startOff, msg)
		return false, false
	}

	if rn > max {
		s.error(startOff, "escape sequence is invalid Unicode code point")
		return false, false
	}
	if utf16.IsSurrogate(rune(rn)) {
		s.writeStringLitSurrogate(pendingSurrogate, rune(rn))
		return false, true
	}
	s.writeStringLitRune(pendingSurrogate, rune(rn))
	return false, false
}

func (s *Scanner) writeStringLitRune(pendingSurrogate *rune, rn rune) {
	if *pendingSurrogate != 0 {
		s.sb.WriteRune(utf8.RuneError)
		*pendingSurrogate = 0
	}
	s.sb.WriteRune(rn)
}

func (s *Scanner) writeStringLitSurrogate(pendingSurrogate *rune, rn rune) {
	if *pendingSurrogate == 0 {
		*pendingSurrogate = rn
	} else {
		s.sb.WriteRune(utf16.DecodeRune(*pendingSurrogate, rn))
		*pendingSurrogate = 0
	}
}

func digitVal(rn rune) int {
	switch {
	case '0' <= rn && rn <= '9':
		return int(rn - '0')
	case 'a' <= rn && rn <= 'f':
		return int(rn - 'a' + 10)
	case 'A' <= rn && rn <= 'F':
		return int(rn - 'A' + 10)
	}
	return 16 // larger than any legal digit val
}
