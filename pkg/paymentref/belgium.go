package paymentref

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	belgiumBodyLen  = 10
	belgiumCheckLen = 2
)

var belgiumNoise = strings.NewReplacer(markerPlus, "", markerStar, "", "/", "")

// ValidateBelgium checks a Belgian structured communication such as
// "+++090/9337/55493+++". The markers and slashes are optional.
func ValidateBelgium(value string) Result {
	normalized := belgiumNoise.Replace(strings.TrimSpace(value))
	if len(normalized) < belgiumBodyLen+belgiumCheckLen {
		return malformed(SchemeBelgium,
			fmt.Sprintf("expected %d digits, got %d", belgiumBodyLen+belgiumCheckLen, len(normalized)))
	}

	body := normalized[:belgiumBodyLen]
	given := normalized[belgiumBodyLen : belgiumBodyLen+belgiumCheckLen]
	if !isDigits(body) || !isDigits(given) {
		return malformed(SchemeBelgium, "reference must contain digits only")
	}

	expected, err := belgiumCheck(body)
	if err != nil {
		return malformed(SchemeBelgium, err.Error())
	}
	if expected != given {
		return mismatch(SchemeBelgium)
	}
	return valid(SchemeBelgium)
}

// belgiumCheck returns the two-digit check for a ten-digit body. A remainder
// of zero maps to 97.
func belgiumCheck(body string) (string, error) {
	n, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse body: %w", err)
	}
	rest := n % 97
	if rest == 0 {
		rest = 97
	}
	return fmt.Sprintf("%02d", rest), nil
}
