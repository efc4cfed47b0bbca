// Package fiscalcode validates the syntax of Italian codici fiscali
// (16-character personal tax codes), including the control character.
package fiscalcode

import (
	"regexp"
	"strings"
)

// Month letters and omocodia digit substitutions are part of the format:
// positions 7-8, 10-11 and 13-15 admit letters L..V in place of digits.
var pattern = regexp.MustCompile(`^[A-Z]{6}[0-9LMNPQRSTUV]{2}[ABCDEHLMPRST][0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{3}[A-Z]$`)

// Control-character contribution of characters in odd positions
// (1st, 3rd, ... 15th), per the ministerial conversion table.
var oddValues = map[byte]int{
	'0': 1, '1': 0, '2': 5, '3': 7, '4': 9, '5': 13, '6': 15, '7': 17, '8': 19, '9': 21,
	'A': 1, 'B': 0, 'C': 5, 'D': 7, 'E': 9, 'F': 13, 'G': 15, 'H': 17, 'I': 19, 'J': 21,
	'K': 2, 'L': 4, 'M': 18, 'N': 20, 'O': 11, 'P': 3, 'Q': 6, 'R': 8, 'S': 12, 'T': 14,
	'U': 16, 'V': 10, 'W': 22, 'X': 25, 'Y': 24, 'Z': 23,
}

func evenValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return int(c - 'A')
}

// IsValid reports whether code is a syntactically valid codice fiscale.
// Lowercase input is accepted; it does not verify that the code belongs
// to a real person.
func IsValid(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 16 || !pattern.MatchString(code) {
		return false
	}

	sum := 0
	for i := 0; i < 15; i++ {
		if i%2 == 0 { // 1st, 3rd, ... are odd positions
			sum += oddValues[code[i]]
		} else {
			sum += evenValue(code[i])
		}
	}

	return code[15] == byte('A'+sum%26)
}
