// Package paymentref validates structured payment references.
//
// Two national schemes are supported: the Belgian structured communication
// ("gestructureerde mededeling", mod 97) and the Dutch payment reference
// ("betalingskenmerk", 11-proof). The scheme is detected from the raw value:
// a reference starting with "+++" or "***" is Belgian, anything else is Dutch.
//
// All functions are pure and safe for concurrent use.
package paymentref

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnexpectedFault  = errors.New("unexpected fault")
)

type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeBelgium
	SchemeNetherlands
)

func (s Scheme) String() string {
	switch s {
	case SchemeBelgium:
		return "Belgium"
	case SchemeNetherlands:
		return "Netherlands"
	default:
		return "unknown"
	}
}

// Kind classifies the outcome of a validation.
type Kind int

const (
	KindValid Kind = iota
	KindChecksumMismatch
	KindMalformedInput
	KindUnexpectedFault
)

func (k Kind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindChecksumMismatch:
		return "checksum_mismatch"
	case KindMalformedInput:
		return "malformed_input"
	case KindUnexpectedFault:
		return "unexpected_fault"
	default:
		return "unknown"
	}
}

// Result is the outcome of validating a single reference. Message and Err
// are empty for valid references.
type Result struct {
	Valid   bool
	Scheme  Scheme
	Kind    Kind
	Message string
	Err     error
}

// FieldError is a Result shaped for hosts that collect messages per field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldError returns nil when the result is valid.
func (r Result) FieldError(field string) *FieldError {
	if r.Valid {
		return nil
	}
	return &FieldError{
		Field:   field,
		Message: r.Message,
		Code:    r.Kind.String(),
	}
}

const (
	markerPlus = "+++"
	markerStar = "***"

	unknownFaultMessage = "An unknown error occurred when validating the payment reference: "
)

// Detect reports which scheme applies to the raw value.
func Detect(value string) Scheme {
	if strings.HasPrefix(value, markerPlus) || strings.HasPrefix(value, markerStar) {
		return SchemeBelgium
	}
	return SchemeNetherlands
}

// Validate detects the scheme of value and checks it. It never panics.
func Validate(value string) Result {
	scheme := Detect(value)
	switch scheme {
	case SchemeBelgium:
		return validateWith(scheme, value, ValidateBelgium)
	default:
		return validateWith(scheme, value, ValidateNetherlands)
	}
}

// validateWith runs fn and turns a panic into a KindUnexpectedFault result.
func validateWith(scheme Scheme, value string, fn func(string) Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = faulted(scheme, fmt.Errorf("%w: %v", ErrUnexpectedFault, r))
		}
	}()

	return fn(value)
}

func valid(scheme Scheme) Result {
	return Result{Valid: true, Scheme: scheme, Kind: KindValid}
}

func mismatch(scheme Scheme) Result {
	where := scheme.String()
	if scheme == SchemeNetherlands {
		where = "the Netherlands"
	}
	return Result{
		Scheme:  scheme,
		Kind:    KindChecksumMismatch,
		Message: "The payment reference is not a valid reference in " + where,
		Err:     fmt.Errorf("%w: %s", ErrChecksumMismatch, scheme),
	}
}

func malformed(scheme Scheme, detail string) Result {
	return Result{
		Scheme:  scheme,
		Kind:    KindMalformedInput,
		Message: fmt.Sprintf("The payment reference is malformed for %s: %s", scheme, detail),
		Err:     fmt.Errorf("%w: %s", ErrMalformedInput, detail),
	}
}

func faulted(scheme Scheme, err error) Result {
	return Result{
		Scheme:  scheme,
		Kind:    KindUnexpectedFault,
		Message: unknownFaultMessage + err.Error(),
		Err:     err,
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
