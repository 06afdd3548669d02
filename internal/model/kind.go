package model

// Kind identifies what a detection hit represents.
//
// The set is closed: switches over Kind are expected to be exhaustive, and
// String returns "unknown" for any value outside the declared constants.
type Kind int

const (
	// KindEmail is an email address.
	KindEmail Kind = iota
	// KindPhone is a telephone number normalized to digits with an optional leading '+'.
	KindPhone
	// KindSocial is a social-profile URL.
	KindSocial
	// KindName is a person name.
	KindName
	// KindTitle is a job title.
	KindTitle
	// KindCompany is an organization name.
	KindCompany
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindSocial:
		return "social"
	case KindName:
		return "name"
	case KindTitle:
		return "title"
	case KindCompany:
		return "company"
	default:
		return "unknown"
	}
}

// Kinds lists every Kind.
var Kinds = []Kind{KindEmail, KindPhone, KindSocial, KindName, KindTitle, KindCompany}

// ParseKind converts a name produced by Kind.String back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Method identifies how a candidate was found.
type Method int

const (
	// MethodMailtoLink is an address taken from a mailto: link.
	MethodMailtoLink Method = iota
	// MethodStandardPattern is a plain address matched in static text.
	MethodStandardPattern
	// MethodJavaScriptRendered is an address that only appears in rendered DOM text.
	MethodJavaScriptRendered
	// MethodObfuscated is an address recovered from a disguised form.
	MethodObfuscated
	// MethodOCR is an address read from image text.
	MethodOCR
)

// Methods lists every Method in priority order, strongest first.
var Methods = []Method{
	MethodMailtoLink,
	MethodStandardPattern,
	MethodJavaScriptRendered,
	MethodObfuscated,
	MethodOCR,
}

// String returns the method name used in reports and the database.
func (m Method) String() string {
	switch m {
	case MethodMailtoLink:
		return "mailto_link"
	case MethodStandardPattern:
		return "standard_pattern"
	case MethodJavaScriptRendered:
		return "javascript_rendered"
	case MethodObfuscated:
		return "obfuscated"
	case MethodOCR:
		return "ocr"
	default:
		return "unknown"
	}
}

// Stronger reports whether m ranks above other.
// The ranking follows the base confidence order of the methods.
func (m Method) Stronger(other Method) bool {
	return m < other
}

// ParseMethod converts a name produced by Method.String back to a Method.
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	parsed, ok := ParseMethod(string(b))
	if !ok {
		return &UnknownEnumError{Enum: "method", Value: string(b)}
	}
	*m = parsed
	return nil
}

// ContentKind identifies what sort of text a page carries.
type ContentKind int

const (
	// ContentHTMLText is body text taken from served HTML.
	ContentHTMLText ContentKind = iota
	// ContentRenderedText is text taken from a DOM after JavaScript execution.
	ContentRenderedText
	// ContentOCRText is text recognized from an image.
	ContentOCRText
)

// String returns the content kind name.
func (c ContentKind) String() string {
	switch c {
	case ContentHTMLText:
		return "html_text"
	case ContentRenderedText:
		return "rendered_text"
	case ContentOCRText:
		return "ocr_text"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ContentKind) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// An empty value decodes to ContentHTMLText.
func (c *ContentKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "html_text", "html":
		*c = ContentHTMLText
	case "rendered_text", "rendered":
		*c = ContentRenderedText
	case "ocr_text", "ocr":
		*c = ContentOCRText
	default:
		return &UnknownEnumError{Enum: "content kind", Value: string(b)}
	}
	return nil
}

// Verdict is the outcome of an external email validation.
type Verdict int

const (
	// VerdictUnknown means the validator could not decide. It never changes a score.
	VerdictUnknown Verdict = iota
	// VerdictValid means the address is known to be deliverable.
	VerdictValid
	// VerdictInvalid means the address is definitely undeliverable.
	VerdictInvalid
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictUnknown:
		return "unknown"
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "unknown":
		*v = VerdictUnknown
	case "valid":
		*v = VerdictValid
	case "invalid":
		*v = VerdictInvalid
	default:
		return &UnknownEnumError{Enum: "verdict", Value: string(b)}
	}
	return nil
}

// UnknownEnumError is returned when text does not name a known enum value.
type UnknownEnumError struct {
	Enum  string
	Value string
}

// Error implements error.
func (e *UnknownEnumError) Error() string {
	return "unknown " + e.Enum + ": " + e.Value
}
