package fingerprint

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text form, per §4.2:
//
//	(songlen,bit_rate,num_errors,RRRR…,DDDD…,c0 c1 … cN)
//
// RRRR… is R as 2*RLen uppercase hex nibbles, DDDD… is Dom as 2*DomLen
// uppercase hex nibbles, and the c_i are decimal 32-bit signed integers
// separated by single spaces. A hand-written scanner is used rather than
// a general parser-combinator or regexp: the grammar is small, bespoke,
// and every rejection reason in §4.2 needs to surface as a distinct,
// checkable error.

// minTextLen is the minimum possible length of a valid text-form record:
// 11 literal/numeric characters (the parens, 5 commas, and one digit each
// for songlen/bit_rate/num_errors/the single cprint codeword) plus the
// two fixed hex blocks.
const minTextLen = 11 + 2*RLen + 2*DomLen

// Format renders rec in the canonical text form: uppercase hex,
// single-space-separated codewords, no trailing space, closing
// parenthesis. Format ∘ Parse maps any accepted text to this canonical
// form.
func Format(rec *Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteByte('(')
	fmt.Fprintf(&b, "%d,%d,%d,", rec.Songlen, rec.BitRate, rec.NumErrors)
	b.WriteString(strings.ToUpper(hex.EncodeToString(rec.R[:])))
	b.WriteByte(',')
	b.WriteString(strings.ToUpper(hex.EncodeToString(rec.Dom[:])))
	b.WriteByte(',')
	for i, c := range rec.Cprint {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", int32(c))
	}
	b.WriteByte(')')
	return b.String(), nil
}

// Parse parses the canonical text form into a Record. parse ∘ format is
// the identity on any valid Record.
func Parse(s string) (*Record, error) {
	if len(s) < minTextLen {
		return nil, fmt.Errorf("fingerprint: text form too short (%d chars, need >= %d)", len(s), minTextLen)
	}
	if s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("fingerprint: text form must be wrapped in parentheses")
	}
	body := s[1 : len(s)-1]

	pos := 0
	songlen, n, err := scanInt(body, pos)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: songlen: %w", err)
	}
	pos = n
	if pos >= len(body) || body[pos] != ',' {
		return nil, fmt.Errorf("fingerprint: missing comma after songlen")
	}
	pos++

	bitRate, n, err := scanInt(body, pos)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: bit_rate: %w", err)
	}
	pos = n
	if pos >= len(body) || body[pos] != ',' {
		return nil, fmt.Errorf("fingerprint: missing comma after bit_rate")
	}
	pos++

	numErrors, n, err := scanInt(body, pos)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: num_errors: %w", err)
	}
	pos = n
	if pos >= len(body) || body[pos] != ',' {
		return nil, fmt.Errorf("fingerprint: missing comma after num_errors")
	}
	pos++

	if pos+2*RLen > len(body) {
		return nil, fmt.Errorf("fingerprint: r block truncated")
	}
	rHex := body[pos : pos+2*RLen]
	var r [RLen]byte
	if err := decodeHexInto(r[:], rHex); err != nil {
		return nil, fmt.Errorf("fingerprint: r block: %w", err)
	}
	pos += 2 * RLen
	if pos >= len(body) || body[pos] != ',' {
		return nil, fmt.Errorf("fingerprint: missing comma after r block")
	}
	pos++

	if pos+2*DomLen > len(body) {
		return nil, fmt.Errorf("fingerprint: dom block truncated")
	}
	domHex := body[pos : pos+2*DomLen]
	var dom [DomLen]byte
	if err := decodeHexInto(dom[:], domHex); err != nil {
		return nil, fmt.Errorf("fingerprint: dom block: %w", err)
	}
	pos += 2 * DomLen
	if pos >= len(body) || body[pos] != ',' {
		return nil, fmt.Errorf("fingerprint: missing comma after dom block")
	}
	pos++

	cprint, err := parseCprintList(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("fingerprint: cprint: %w", err)
	}

	return NewRecord(songlen, bitRate, numErrors, r, dom, cprint)
}

// scanInt reads an optionally-signed decimal integer starting at pos and
// returns its value and the index immediately after it.
func scanInt(s string, pos int) (int, int, error) {
	start := pos
	if pos < len(s) && s[pos] == '-' {
		pos++
	}
	digitsStart := pos
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	if pos == digitsStart {
		return 0, pos, fmt.Errorf("expected digits at offset %d", start)
	}
	v, err := strconv.Atoi(s[start:pos])
	if err != nil {
		return 0, pos, fmt.Errorf("invalid integer %q: %w", s[start:pos], err)
	}
	return v, pos, nil
}

func decodeHexInto(dst []byte, hexStr string) error {
	for _, c := range hexStr {
		if !isHexDigit(byte(c)) {
			return fmt.Errorf("non-hex character %q", c)
		}
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return err
	}
	copy(dst, decoded)
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

// parseCprintList parses the trailing "c0 c1 … cN)" region with the
// closing paren already stripped by Parse's outer trim.
func parseCprintList(s string) ([]uint32, error) {
	if s == "" {
		return nil, fmt.Errorf("empty cprint list")
	}
	var words []uint32
	tokStart := -1
	flush := func(end int) error {
		if tokStart < 0 {
			return nil
		}
		tok := s[tokStart:end]
		if len(tok) > 12 {
			return fmt.Errorf("codeword %q wider than 12 characters", tok)
		}
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid codeword %q: %w", tok, err)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("codeword %q out of int32 range", tok)
		}
		words = append(words, uint32(int32(v)))
		tokStart = -1
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			if err := flush(i); err != nil {
				return nil, err
			}
		case c == '-':
			if tokStart < 0 {
				tokStart = i
			} else {
				return nil, fmt.Errorf("unexpected '-' inside codeword at offset %d", i)
			}
		case c >= '0' && c <= '9':
			if tokStart < 0 {
				tokStart = i
			}
		default:
			return nil, fmt.Errorf("unexpected character %q in cprint list at offset %d", c, i)
		}
	}
	if err := flush(len(s)); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no codewords parsed")
	}
	return words, nil
}
