package scanner

// comment scans a single-line "# ..." comment, consuming up to but not
// including the terminating newline. lit is the verbatim text including the
// leading '#'; val is the text with the '#' stripped.
func (s *Scanner) comment() (lit, val string) {
	// '#' opening already consumed, hence the -1
	start := s.off - 1

	for s.cur != '\n' && s.cur != -1 {
		s.advance()
	}
	return string(s.src[start:s.off]), string(s.src[start+1 : s.off])
}
