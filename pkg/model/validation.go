package model

// ValidationKind identifies a validation rule.
type ValidationKind string

const (
	ValidationMinLength ValidationKind = "min-length"
	ValidationMaxLength ValidationKind = "max-length"
	ValidationMinimum   ValidationKind = "minimum"
	ValidationMaximum   ValidationKind = "maximum"
	ValidationPattern   ValidationKind = "pattern"
	ValidationFormat    ValidationKind = "format"
)

// Validation is a declarative constraint attached to a string, number or
// collection model. It is also an Option so it can be passed to constructors.
type Validation struct {
	Kind ValidationKind
	// Value holds the bound of length and range rules.
	Value float64
	// Inclusive applies to minimum and maximum.
	Inclusive bool
	// Pattern holds the regular expression of pattern and format rules.
	Pattern string
	// Format is the format name of a format rule.
	Format  string
	Message string
}

func (v Validation) apply(o *options) { o.validations = append(o.validations, v) }

// MinLength bounds the length of a string or the size of a collection from below.
func MinLength(n int) Validation {
	return Validation{Kind: ValidationMinLength, Value: float64(n)}
}

// MaxLength bounds the length of a string or the size of a collection from above.
func MaxLength(n int) Validation {
	return Validation{Kind: ValidationMaxLength, Value: float64(n)}
}

// Minimum bounds a number from below.
func Minimum(v float64, inclusive bool) Validation {
	return Validation{Kind: ValidationMinimum, Value: v, Inclusive: inclusive}
}

// Maximum bounds a number from above.
func Maximum(v float64, inclusive bool) Validation {
	return Validation{Kind: ValidationMaximum, Value: v, Inclusive: inclusive}
}

// Pattern requires a string to match the regular expression re.
func Pattern(re string) Validation {
	return Validation{Kind: ValidationPattern, Pattern: re}
}

// Format requires a string to follow a well-known format. The pattern comes
// from FormatPatterns and is empty for unknown names.
func Format(name string) Validation {
	return Validation{Kind: ValidationFormat, Format: name, Pattern: FormatPatterns[name]}
}

// WithMessage returns a copy of v carrying a custom failure message.
func (v Validation) WithMessage(msg string) Validation {
	v.Message = msg
	return v
}

// FormatPatterns maps the JSON Schema format names to a matching regular expression.
var FormatPatterns = map[string]string{
	"date-time":             `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})$`,
	"date":                  `^\d{4}-\d{2}-\d{2}$`,
	"time":                  `^\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?$`,
	"duration":              `^P(?=\d|T\d)(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(?:\.\d+)?S)?)?$`,
	"email":                 `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
	"hostname":              `^(?=.{1,253}$)(?:[a-zA-Z0-9](?:[a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`,
	"ipv4":                  `^(25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)){3}$`,
	"ipv6":                  `^(([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}|(::1)|::)$`,
	"uri":                   `^[a-zA-Z][a-zA-Z0-9+.-]*:[^\s]*$`,
	"uri-reference":         `^[^\s]*$`,
	"uri-template":          `^[^\s{}]*\{[^\s{}]+\}[^\s{}]*$`,
	"url":                   `^[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+$`,
	"json-pointer":          `^/(?:[^/~]|~[01])*$`,
	"relative-json-pointer": `^(\d+)?(?:/(?:[^/~]|~[01])*)*$`,
	"regex":                 `^.*$`,
	"byte":                  `^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`,
	"binary":                `^[01]*$`,
	"uuid":                  `^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`,
	"ipvfuture":             `^v[0-9A-Fa-f]+\.[A-Za-z0-9\-._~!$&'()*+,;=:]+$`,
}

// NormalizeValidations collapses redundant bounds into the tightest one of each
// kind and orders the result as minLength, maxLength, minimum, maximum, then
// every other rule in declaration order.
//
// On equal range bounds the inclusive minimum and the exclusive maximum win.
func NormalizeValidations(vs []Validation) []Validation {
	if len(vs) == 0 {
		return nil
	}
	var minLen, maxLen, minimum, maximum *Validation
	var rest []Validation
	for i := range vs {
		v := vs[i]
		switch v.Kind {
		case ValidationMinLength:
			if minLen == nil || v.Value >= minLen.Value {
				minLen = &v
			}
		case ValidationMaxLength:
			if maxLen == nil || v.Value <= maxLen.Value {
				maxLen = &v
			}
		case ValidationMinimum:
			switch {
			case minimum == nil, v.Value > minimum.Value:
				minimum = &v
			case v.Value == minimum.Value && v.Inclusive:
				minimum = &v
			}
		case ValidationMaximum:
			switch {
			case maximum == nil, v.Value < maximum.Value:
				maximum = &v
			case v.Value == maximum.Value && !v.Inclusive:
				maximum = &v
			}
		default:
			rest = append(rest, v)
		}
	}
	out := make([]Validation, 0, len(rest)+4)
	for _, v := range []*Validation{minLen, maxLen, minimum, maximum} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return append(out, rest...)
}

// FindValidation returns the first rule of kind k.
func FindValidation(vs []Validation, k ValidationKind) (Validation, bool) {
	for _, v := range vs {
		if v.Kind == k {
			return v, true
		}
	}
	return Validation{}, false
}
