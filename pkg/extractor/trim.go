package extractor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// TrimRule removes format-specific record separator bytes before a line is parsed.
type TrimRule interface {
	Trim(line []byte) []byte
	String() string
}

type rowSeparator struct{}

// RowSeparator drops trailing '\n' and '\r' bytes and then at most one trailing ','.
// It covers plain JSONL and row-per-line array dumps ("{...},\r\n"), including the
// last row of an array which carries no comma.
var RowSeparator TrimRule = rowSeparator{}

func (rowSeparator) Trim(line []byte) []byte {
	line = bytes.TrimRight(line, "\r\n")
	return bytes.TrimSuffix(line, []byte{','})
}

func (rowSeparator) String() string { return "row" }

// FixedSuffix drops exactly n trailing bytes of the raw line, terminator included.
// FixedSuffix(2) on "{...},\n" yields "{...}".
type FixedSuffix int

func (n FixedSuffix) Trim(line []byte) []byte {
	if int(n) >= len(line) {
		return line[:0]
	}
	return line[:len(line)-int(n)]
}

func (n FixedSuffix) String() string { return "fixed:" + strconv.Itoa(int(n)) }

type noTrim struct{}

// NoTrim passes lines through untouched.
var NoTrim TrimRule = noTrim{}

func (noTrim) Trim(line []byte) []byte { return line }
func (noTrim) String() string          { return "none" }

// ParseTrimRule parses "row", "none" or "fixed:N".
func ParseTrimRule(s string) (TrimRule, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "row":
		return RowSeparator, nil
	case "none":
		return NoTrim, nil
	}

	kv := strings.SplitN(s, ":", 2)
	if len(kv) != 2 || strings.TrimSpace(kv[0]) != "fixed" {
		return nil, fmt.Errorf("unknown trim rule: %s", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid fixed trim length: %s", kv[1])
	}
	return FixedSuffix(n), nil
}
