package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// ZeroAmount is the literal amount of every zero-amount transaction code.
	ZeroAmount = "0"

	// MaxWorkingDayOffset is the furthest a settlement date may be from today.
	MaxWorkingDayOffset = 30

	// DateLayout is how dates are held in a LogicalRecord.
	DateLayout = "2006-01-02"

	// ReservedReferencePrefix may not start a payment reference.
	ReservedReferencePrefix = "DDIC"

	MaxNameLength      = 18
	MinReferenceLength = 6
	MaxReferenceLength = 18

	MaxDecimalAmount = 20000000.00
	MaxPenceAmount   = 2000000000
)

var (
	// ZeroAmountCodes are the transaction codes that carry no money.
	ZeroAmountCodes = []string{"0C", "0N", "0S"}

	// TransactionCodes are all recognised transaction codes.
	TransactionCodes = []string{"01", "17", "18", "19", "99", "0C", "0N", "0S"}

	amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

	disallowedSymbols = []string{"@", "*", "#", "!", "%", "$"}
)

// IsZeroAmountCode reports whether code forces a zero amount.
func IsZeroAmountCode(code string) bool {
	for _, c := range ZeroAmountCodes {
		if c == code {
			return true
		}
	}
	return false
}

func isKnownCode(code string) bool {
	for _, c := range TransactionCodes {
		if c == code {
			return true
		}
	}
	return false
}

func recordHasZeroCode(ctx *FieldContext) bool {
	return IsZeroAmountCode(ctx.Record.Value(ctx.Layout.CodeField))
}

// recordMovesMoney is the complement of recordHasZeroCode. Amount and date
// violations are limited to these records: on a zero-amount code the same
// values would also break the zero-amount or zero-code-date rule.
func recordMovesMoney(ctx *FieldContext) bool {
	return !recordHasZeroCode(ctx)
}

// NumericCode is a fixed-length all-digit identifier such as a sort code or
// account number. All zeros is reserved.
func NumericCode(name string, width int) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return strconv.Itoa(ctx.Src.IntRange(1, 9)) + ctx.Src.Digits(width-1), nil
		},
		Constraints: []Constraint{
			{Rule: "non-numeric", OK: pure(isDigits)},
			{Rule: "wrong-length", OK: pure(func(v string) bool { return len(v) == width })},
			{Rule: "all-zeros", OK: pure(func(v string) bool { return v == "" || strings.Trim(v, "0") != "" })},
		},
		Violations: []Violation{
			{
				Rule: "non-numeric",
				Generate: func(ctx *FieldContext) (string, error) {
					head := width / 2
					return ctx.Src.Digits(head-1) + ctx.Src.Letters(2) + ctx.Src.Digits(width-head-1), nil
				},
			},
			{
				Rule: "wrong-length",
				Generate: func(ctx *FieldContext) (string, error) {
					n := width - 1
					if ctx.Src.Bool() {
						n = width + 1
					}
					return strconv.Itoa(ctx.Src.IntRange(1, 9)) + ctx.Src.Digits(n-1), nil
				},
			},
			{
				Rule:           "all-zeros",
				Generate:       fixed(strings.Repeat("0", width)),
				FixedWidthSafe: true,
			},
		},
	}
}

// AccountName is a free-text holder name of at most MaxNameLength characters.
func AccountName(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return validName(ctx.Src), nil
		},
		Constraints: []Constraint{
			{Rule: "blank", OK: pure(func(v string) bool { return strings.TrimSpace(v) != "" })},
			{Rule: "too-long", OK: pure(func(v string) bool { return len(v) <= MaxNameLength })},
			{Rule: "charset", OK: pure(HasOnlyAllowed)},
		},
		Violations: []Violation{
			{
				Rule: "too-long",
				Generate: func(ctx *FieldContext) (string, error) {
					target := ctx.Src.IntRange(MaxNameLength+1, 30)
					s := validName(ctx.Src)
					for len(s) < target {
						s += " " + validName(ctx.Src)
					}
					return s[:target], nil
				},
			},
			{
				Rule: "blank",
				Generate: func(ctx *FieldContext) (string, error) {
					return strings.Repeat(" ", ctx.Src.IntRange(1, 3)), nil
				},
				FixedWidthSafe: true,
			},
			{
				Rule: "charset",
				Generate: func(ctx *FieldContext) (string, error) {
					return replaceOne(ctx.Src, validName(ctx.Src)), nil
				},
			},
		},
	}
}

func validName(src Source) string {
	for attempt := 0; attempt < 5; attempt++ {
		raw := src.PersonName()
		if src.Bool() {
			raw = src.CompanyName()
		}
		if name := normaliseName(raw); name != "" {
			return name
		}
	}
	return "ACCOUNT HOLDER"
}

func normaliseName(raw string) string {
	s := strings.Join(strings.Fields(strings.ToUpper(Sanitize(raw))), " ")
	if len(s) > MaxNameLength {
		s = strings.TrimSpace(s[:MaxNameLength])
	}
	return s
}

func replaceOne(src Source, s string) string {
	if s == "" {
		return pick(src, disallowedSymbols)
	}
	i := src.IntRange(0, len(s)-1)
	return s[:i] + pick(src, disallowedSymbols) + s[i+1:]
}

// Reference is a payment reference: 6 to 18 characters from the free-text
// charset, not a single repeated character, not starting with whitespace or
// the reserved prefix.
func Reference(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return validReference(ctx.Src), nil
		},
		Constraints: []Constraint{
			{Rule: "too-short", OK: pure(func(v string) bool { return len(v) >= MinReferenceLength })},
			{Rule: "too-long", OK: pure(func(v string) bool { return len(v) <= MaxReferenceLength })},
			{Rule: "charset", OK: pure(HasOnlyAllowed)},
			{Rule: "leading-whitespace", OK: pure(func(v string) bool {
				return v == "" || !unicode.IsSpace([]rune(v)[0])
			})},
			{Rule: "reserved-prefix", OK: pure(func(v string) bool {
				return !strings.HasPrefix(strings.ToUpper(v), ReservedReferencePrefix)
			})},
			{Rule: "repeated-character", OK: pure(func(v string) bool { return !allSameRune(v) })},
		},
		Violations: []Violation{
			{
				Rule: "too-short",
				Generate: func(ctx *FieldContext) (string, error) {
					return ctx.Src.Letters(2) + ctx.Src.Digits(ctx.Src.IntRange(1, 3)), nil
				},
				FixedWidthSafe: true,
			},
			{
				Rule: "too-long",
				Generate: func(ctx *FieldContext) (string, error) {
					return ctx.Src.Letters(3) + ctx.Src.Digits(ctx.Src.IntRange(16, 27)), nil
				},
			},
			{
				Rule: "charset",
				Generate: func(ctx *FieldContext) (string, error) {
					return replaceOne(ctx.Src, validReference(ctx.Src)), nil
				},
			},
			{
				Rule: "leading-whitespace",
				Generate: func(ctx *FieldContext) (string, error) {
					return " " + ctx.Src.Letters(2) + ctx.Src.Digits(ctx.Src.IntRange(3, 15)), nil
				},
				FixedWidthSafe: true,
			},
			{
				Rule: "reserved-prefix",
				Generate: func(ctx *FieldContext) (string, error) {
					return ReservedReferencePrefix + ctx.Src.Digits(ctx.Src.IntRange(2, 14)), nil
				},
				FixedWidthSafe: true,
			},
			{
				Rule: "repeated-character",
				Generate: func(ctx *FieldContext) (string, error) {
					return strings.Repeat(ctx.Src.Letters(1), ctx.Src.IntRange(MinReferenceLength, MaxReferenceLength)), nil
				},
				FixedWidthSafe: true,
			},
		},
	}
}

func validReference(src Source) string {
	for attempt := 0; attempt < 10; attempt++ {
		letters := src.Letters(src.IntRange(2, 5))
		sep := pick(src, []string{"", "", "-", "/", " "})
		digits := src.Digits(src.IntRange(4, MaxReferenceLength-len(letters)-len(sep)))
		ref := letters + sep + digits
		if !strings.HasPrefix(ref, ReservedReferencePrefix) {
			return ref
		}
	}
	return "REF" + src.Digits(8)
}

// TransactionCode is one of TransactionCodes.
func TransactionCode(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return pick(ctx.Src, TransactionCodes), nil
		},
		Constraints: []Constraint{
			{Rule: "unknown-code", OK: pure(isKnownCode)},
		},
		Violations: []Violation{
			{
				Rule: "unknown-code",
				Generate: func(ctx *FieldContext) (string, error) {
					return ctx.Src.Letters(1) + ctx.Src.Digits(1), nil
				},
				FixedWidthSafe: true,
			},
		},
	}
}

// DecimalAmount is a pounds-and-pence amount such as "1234.56".
func DecimalAmount(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return formatPence(ctx.Src.IntRange(1, 5000000)), nil
		},
		Constraints: []Constraint{
			{Rule: "non-numeric", OK: pure(amountPattern.MatchString)},
			{Rule: "negative", OK: pure(func(v string) bool { return !strings.HasPrefix(v, "-") })},
			{Rule: "decimal-places", OK: pure(func(v string) bool {
				i := strings.IndexByte(v, '.')
				return i < 0 || len(v)-i-1 <= 2
			})},
			{Rule: "maximum", OK: pure(func(v string) bool {
				f, err := strconv.ParseFloat(v, 64)
				return err != nil || f <= MaxDecimalAmount
			})},
		},
		Violations: []Violation{
			{
				Rule: "non-numeric",
				Generate: func(ctx *FieldContext) (string, error) {
					return strconv.Itoa(ctx.Src.IntRange(1, 999)) + ctx.Src.Letters(1) + "." + ctx.Src.Digits(2), nil
				},
				Applies: recordMovesMoney,
			},
			{
				Rule: "negative",
				Generate: func(ctx *FieldContext) (string, error) {
					return "-" + formatPence(ctx.Src.IntRange(1, 5000000)), nil
				},
				Applies: recordMovesMoney,
			},
			{
				Rule: "decimal-places",
				Generate: func(ctx *FieldContext) (string, error) {
					return strconv.Itoa(ctx.Src.IntRange(1, 99999)) + "." + ctx.Src.Digits(3), nil
				},
				Applies: recordMovesMoney,
			},
			{
				Rule: "maximum",
				Generate: func(ctx *FieldContext) (string, error) {
					return strconv.Itoa(ctx.Src.IntRange(20000001, 99999999)) + "." + ctx.Src.Digits(2), nil
				},
				Applies: recordMovesMoney,
			},
		},
	}
}

func formatPence(pence int) string {
	return fmt.Sprintf("%d.%02d", pence/100, pence%100)
}

// PenceAmount is an all-digit amount in pence, as fixed-width lines carry it.
func PenceAmount(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return strconv.Itoa(ctx.Src.IntRange(100, 50000000)), nil
		},
		Constraints: []Constraint{
			{Rule: "non-numeric", OK: pure(isDigits)},
			{Rule: "maximum", OK: pure(func(v string) bool {
				n, err := strconv.ParseInt(v, 10, 64)
				return err != nil || n <= MaxPenceAmount
			})},
		},
		Violations: []Violation{
			{
				Rule: "maximum",
				Generate: func(ctx *FieldContext) (string, error) {
					return strconv.Itoa(ctx.Src.IntRange(MaxPenceAmount+1, 99999999999)), nil
				},
				FixedWidthSafe: true,
				Applies:        recordMovesMoney,
			},
		},
	}
}

// SettlementDate is a working day between the layout's minimum offset and
// MaxWorkingDayOffset working days from today, held as DateLayout.
func SettlementDate(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			offset := ctx.Src.IntRange(ctx.Layout.MinDateOffset(), MaxWorkingDayOffset)
			d, err := ctx.Cal.AddWorkingDays(ctx.Today, offset)
			if err != nil {
				return "", err
			}
			return d.Format(DateLayout), nil
		},
		Constraints: []Constraint{
			{Rule: "format", OK: pure(func(v string) bool {
				_, err := time.Parse(DateLayout, v)
				return err == nil
			})},
			{Rule: "non-working-day", OK: func(ctx *FieldContext, v string) (bool, error) {
				d, err := time.Parse(DateLayout, v)
				if err != nil {
					return true, nil
				}
				return ctx.Cal.IsWorkingDay(d)
			}},
			{Rule: "window", OK: func(ctx *FieldContext, v string) (bool, error) {
				d, err := time.Parse(DateLayout, v)
				if err != nil {
					return true, nil
				}
				n, err := ctx.Cal.WorkingDaysBetween(ctx.Today, d)
				if err != nil {
					return false, err
				}
				return n >= ctx.Layout.MinDateOffset() && n <= MaxWorkingDayOffset, nil
			}},
		},
		Violations: []Violation{
			{
				Rule: "format",
				Generate: func(ctx *FieldContext) (string, error) {
					return fmt.Sprintf("%d-%02d-%02d", ctx.Today.Year(), ctx.Src.IntRange(13, 19), ctx.Src.IntRange(32, 39)), nil
				},
				Applies: recordMovesMoney,
			},
			{
				Rule: "non-working-day",
				Generate: func(ctx *FieldContext) (string, error) {
					d, err := ctx.Cal.AddWorkingDays(ctx.Today, ctx.Src.IntRange(ctx.Layout.MinDateOffset(), MaxWorkingDayOffset-5))
					if err != nil {
						return "", err
					}
					for d.Weekday() != time.Saturday {
						d = d.AddDate(0, 0, 1)
					}
					return d.Format(DateLayout), nil
				},
				FixedWidthSafe: true,
				Applies:        recordMovesMoney,
			},
			{
				Rule: "window",
				Generate: func(ctx *FieldContext) (string, error) {
					d, err := ctx.Cal.AddWorkingDays(ctx.Today, 1)
					if err != nil {
						return "", err
					}
					return d.Format(DateLayout), nil
				},
				FixedWidthSafe: true,
				Applies:        recordMovesMoney,
			},
		},
	}
}

// RealtimeChecksum is four digits or a slash followed by three capitals.
func RealtimeChecksum(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			if ctx.Src.Bool() {
				return ctx.Src.Digits(4), nil
			}
			return "/" + ctx.Src.Letters(3), nil
		},
		Constraints: []Constraint{
			{Rule: "wrong-length", OK: pure(func(v string) bool { return len(v) == 4 })},
			{Rule: "characters", OK: pure(func(v string) bool {
				return isDigits(v) || (strings.HasPrefix(v, "/") && isUpperLetters(v[1:]))
			})},
		},
		Violations: []Violation{
			{
				Rule: "wrong-length",
				Generate: func(ctx *FieldContext) (string, error) {
					if ctx.Src.Bool() {
						return ctx.Src.Digits(ctx.Src.IntRange(5, 6)), nil
					}
					return "/" + ctx.Src.Letters(ctx.Src.IntRange(4, 5)), nil
				},
			},
		},
	}
}

// SecondaryIdentifier is a six-digit service user number that may only be
// present on zero-amount transaction codes.
func SecondaryIdentifier(name string) FieldRule {
	return FieldRule{
		Name: name,
		Valid: func(ctx *FieldContext) (string, error) {
			return strconv.Itoa(ctx.Src.IntRange(1, 9)) + ctx.Src.Digits(5), nil
		},
		Constraints: []Constraint{
			{Rule: "format", OK: pure(func(v string) bool { return len(v) == 6 && isDigits(v) })},
			{Rule: "eligibility", OK: func(ctx *FieldContext, v string) (bool, error) {
				return v == "" || recordHasZeroCode(ctx), nil
			}},
		},
		Violations: []Violation{
			{
				Rule: "format",
				Generate: func(ctx *FieldContext) (string, error) {
					return ctx.Src.Letters(3) + ctx.Src.Digits(3), nil
				},
				FixedWidthSafe: true,
				Applies:        recordHasZeroCode,
			},
			{
				Rule: "eligibility",
				Generate: func(ctx *FieldContext) (string, error) {
					return strconv.Itoa(ctx.Src.IntRange(1, 9)) + ctx.Src.Digits(5), nil
				},
				FixedWidthSafe: true,
				Applies:        recordMovesMoney,
			},
		},
	}
}

// Constant always holds value and is never invalidated.
func Constant(name, value string) FieldRule {
	return FieldRule{
		Name:  name,
		Valid: fixed(value),
		Constraints: []Constraint{
			{Rule: "fixed-value", OK: pure(func(v string) bool { return v == value })},
		},
	}
}
