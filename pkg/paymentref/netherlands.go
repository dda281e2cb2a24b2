package paymentref

import (
	"fmt"
	"strconv"
	"strings"
)

// Form is the layout of a Dutch reference, fixed once its length is known.
type Form int

const (
	FormShort Form = iota + 1 // 1-digit check + 15-digit body
	FormLong                  // 2-digit check + 15-digit body
)

func (f Form) checkLen() int {
	if f == FormShort {
		return 1
	}
	return 2
}

const dutchBodyLen = 15

// Indexed by position from the right, rightmost first.
var dutchWeights = [dutchBodyLen]int{2, 4, 8, 5, 10, 9, 7, 3, 6, 1, 2, 4, 8, 5, 10}

func dutchForm(normalized string) (Form, bool) {
	switch len(normalized) {
	case dutchBodyLen + 1:
		return FormShort, true
	case dutchBodyLen + 2:
		return FormLong, true
	default:
		return 0, false
	}
}

// ValidateNetherlands checks a Dutch payment reference. Spaces are ignored.
func ValidateNetherlands(value string) Result {
	normalized := strings.TrimSpace(strings.ReplaceAll(value, " ", ""))

	form, ok := dutchForm(normalized)
	if !ok {
		return malformed(SchemeNetherlands,
			fmt.Sprintf("expected 16 or 17 digits, got %d", len(normalized)))
	}

	given := normalized[:form.checkLen()]
	body := normalized[form.checkLen():]
	if !isDigits(given) || !isDigits(body) {
		return malformed(SchemeNetherlands, "reference must contain digits only")
	}

	expected, err := dutchCheck(body)
	if err != nil {
		return malformed(SchemeNetherlands, err.Error())
	}
	givenCheck, err := strconv.Atoi(given)
	if err != nil {
		return malformed(SchemeNetherlands, fmt.Sprintf("parse check: %v", err))
	}
	if expected != givenCheck {
		return mismatch(SchemeNetherlands)
	}
	return valid(SchemeNetherlands)
}

// dutchCheck computes the 11-proof check digit of body. Bodies shorter than
// 15 digits are left-padded with zeros.
func dutchCheck(body string) (int, error) {
	if len(body) > dutchBodyLen {
		return 0, fmt.Errorf("body longer than %d digits", dutchBodyLen)
	}
	if len(body) < dutchBodyLen {
		body = strings.Repeat("0", dutchBodyLen-len(body)) + body
	}

	sum := 0
	for pos := 0; pos < dutchBodyLen; pos++ {
		c := body[dutchBodyLen-1-pos]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q", c)
		}
		sum += int(c-'0') * dutchWeights[pos]
	}

	check := 11 - sum%11
	switch check {
	case 10:
		return 1, nil
	case 11:
		return 0, nil
	}
	return check, nil
}
