package expr

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var unescapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'`':  '`',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'0':  0,
}

// unquoteString takes a quoted string (including the surrounding single or
// double quotes) and returns the unquoted string, along with any error
// encountered.
func unquoteString(s string) (string, error) {
	n := len(s)
	if n < 2 {
		return "", errors.New("too short a string")
	}

	var quote = s[0]
	if (quote != '\'' && quote != '"') || s[n-1] != quote {
		return "", errors.New("string not surrounded by quotes")
	}

	s = s[1 : n-1]
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var escaping = false
	var result = make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if escaping {
			if r == 'u' {
				if i+4 > len(s) {
					return "", errors.New("error scanning unicode escape, expect \\uNNNN")
				}
				num, err := strconv.ParseInt(s[i:i+4], 16, 0)
				if err != nil {
					return "", err
				}
				r = rune(num)
				i += 4
			} else if replacement, ok := unescapes[r]; ok {
				r = replacement
			}
			// unknown escapes stand for the character itself
			result = append(result, r)
			escaping = false
			continue
		}

		if r == '\\' {
			escaping = true
			continue
		}
		result = append(result, r)
	}
	if escaping {
		return "", errors.New("unterminated escape sequence")
	}
	return string(result), nil
}
