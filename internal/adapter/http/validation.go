package http

import (
	"errors"
	"math"
	"math/big"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reAddr  = regexp.MustCompile(`^0x[a-f0-9]{40}$`)
	reHex64 = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

type CustomValidator struct{ v *validator.Validate }

// NewValidator registers the ledger tags. decimals is the display precision
// accepted by the "amount" tag.
func NewValidator(decimals int32) *CustomValidator {
	v := validator.New()

	// member address = 0x + 40 lowercase hex
	_ = v.RegisterValidation("addr", func(fl validator.FieldLevel) bool {
		return reAddr.MatchString(fl.Field().String())
	})
	// hashed identifier = 64-char lowercase hex
	_ = v.RegisterValidation("hex64", func(fl validator.FieldLevel) bool {
		return reHex64.MatchString(fl.Field().String())
	})
	// non-negative decimal string that converts exactly to smallest units
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String(), decimals)
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "addr":
			out = append(out, FieldError{Field: field, Message: "must be a 0x-prefixed 40-char lowercase hex address"})
		case "hex64":
			out = append(out, FieldError{Field: field, Message: "must be 64-char lowercase hex"})
		case "amount":
			out = append(out, FieldError{Field: field, Message: "must be a non-negative decimal within the display precision"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

var (
	errAmountFormat    = errors.New("amount is not a decimal number")
	errAmountNegative  = errors.New("amount is negative")
	errAmountPrecision = errors.New("amount has more decimal places than allowed")
	errAmountRange     = errors.New("amount is out of range")
)

var maxUint64 = fromUnits(math.MaxUint64)

func fromUnits(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// ParseAmount converts a display amount ("12.50") into smallest units.
func ParseAmount(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errAmountFormat
	}
	if d.IsNegative() {
		return 0, errAmountNegative
	}
	units := d.Shift(decimals)
	if !units.IsInteger() {
		return 0, errAmountPrecision
	}
	if units.GreaterThan(maxUint64) {
		return 0, errAmountRange
	}
	return units.BigInt().Uint64(), nil
}
