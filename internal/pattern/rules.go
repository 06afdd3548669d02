package pattern

import "github.com/nao1215/contactscan/internal/model"

// Base confidence per detection method.
const (
	WeightMailtoLink         = 0.95
	WeightStandardPattern    = 0.85
	WeightJavaScriptRendered = 0.80
	WeightObfuscated         = 0.65
	WeightOCR                = 0.55
)

// Building blocks shared by several rules.
const (
	emailExpr = `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`

	// nameWord is a capitalized word that may carry internal capitals, hyphens or
	// apostrophes: Doe, McDonald, O'Neil, Smith-Jones.
	nameWord = `\p{Lu}[\p{L}'\-]*\p{Ll}`

	titleModifiers = `senior|junior|lead|principal|chief|head|vice|executive|assistant|associate|` +
		`managing|general|deputy|regional|marketing|sales|product|project|account|software|` +
		`technical|operations|finance|hr|communications|research|content|digital|business|staff`

	titleNouns = `president|director|manager|engineer|officer|founder|co-founder|partner|editor|` +
		`developer|designer|consultant|analyst|coordinator|administrator|architect|professor|` +
		`lecturer|researcher|scientist|specialist|recruiter|secretary|treasurer|chairman|` +
		`chairwoman|chairperson|chair|owner`

	companySuffixes = `Inc|LLC|Ltd|Corp|Corporation|GmbH|AG|SA|PLC|plc|Co|Company|Group|Limited|LLP|BV|Pty Ltd`
)

// DefaultRules returns the built-in rule table in priority order.
// The slice is freshly allocated, so callers may append their own rules.
func DefaultRules() []Rule {
	return []Rule{
		// Emails: mailto links first, then plain text, then rewritten and encoded forms.
		{
			Name:    "email_mailto",
			Kind:    model.KindEmail,
			Method:  model.MethodMailtoLink,
			Expr:    `(?i)mailto:(?://)?(` + emailExpr + `)`,
			Group:   1,
			Decoder: DecodeEmail,
			Weight:  WeightMailtoLink,
		},
		{
			Name:    "email_standard",
			Kind:    model.KindEmail,
			Method:  model.MethodStandardPattern,
			Expr:    emailExpr,
			Scope:   ScopeOutsideRewrites,
			Decoder: DecodeEmail,
			Weight:  WeightStandardPattern,
		},
		{
			Name:    "email_obfuscated",
			Kind:    model.KindEmail,
			Method:  model.MethodObfuscated,
			Expr:    emailExpr,
			Scope:   ScopeInsideRewrites,
			Decoder: DecodeEmail,
			Weight:  WeightObfuscated,
		},
		{
			Name:    "email_base64",
			Kind:    model.KindEmail,
			Method:  model.MethodObfuscated,
			Expr:    `[A-Za-z0-9+/]{12,}={0,2}`,
			Scope:   ScopeOutsideRewrites,
			Decoder: DecodeBase64Email,
			Weight:  WeightObfuscated,
		},

		// Phones.
		{
			Name:    "phone_tel_link",
			Kind:    model.KindPhone,
			Method:  model.MethodStandardPattern,
			Expr:    `(?i)tel:(\+?[0-9][0-9 ().\-]{5,20}[0-9])`,
			Group:   1,
			Decoder: DecodePhone,
		},
		{
			Name:    "phone_labelled",
			Kind:    model.KindPhone,
			Method:  model.MethodStandardPattern,
			Expr:    `(?i)\b(?:phone|telephone|tel|mobile|cell|fax|ph)\.? ?:? ?(\+?\(?[0-9][0-9 ().\-]{5,20}[0-9])`,
			Group:   1,
			Decoder: DecodePhone,
		},
		{
			Name:    "phone_international",
			Kind:    model.KindPhone,
			Method:  model.MethodStandardPattern,
			Expr:    `\+[1-9][0-9]{0,2}(?:[ .\-]?\(?[0-9]{1,4}\)?){2,5}`,
			Decoder: DecodePhone,
		},
		{
			Name:    "phone_nanp",
			Kind:    model.KindPhone,
			Method:  model.MethodStandardPattern,
			Expr:    `(?:\b1[ .\-]?)?(?:\([2-9][0-9]{2}\)|\b[2-9][0-9]{2})[ .\-]?[0-9]{3}[ .\-][0-9]{4}\b`,
			Decoder: DecodePhone,
		},

		// Social profiles.
		socialRule("linkedin", `(?i)(?:https?://)?(?:[a-z]{2,3}\.)?\blinkedin\.com/(?:in|company|pub)/[A-Za-z0-9_\-%.]+`),
		socialRule("twitter", `(?i)(?:https?://)?(?:www\.|mobile\.)?\b(?:twitter|x)\.com/[A-Za-z0-9_]{1,15}\b`),
		socialRule("facebook", `(?i)(?:https?://)?(?:www\.|m\.)?\b(?:facebook|fb)\.com/[A-Za-z0-9.\-]{2,}`),
		socialRule("instagram", `(?i)(?:https?://)?(?:www\.)?\binstagram\.com/[A-Za-z0-9_.]{1,30}`),
		socialRule("github", `(?i)(?:https?://)?(?:www\.)?\bgithub\.com/[A-Za-z0-9\-]{1,39}\b`),
		socialRule("youtube", `(?i)(?:https?://)?(?:www\.|m\.)?\byoutube\.com/(?:c/|channel/|user/|@)[A-Za-z0-9_\-.]+`),
		socialRule("tiktok", `(?i)(?:https?://)?(?:www\.)?\btiktok\.com/@[A-Za-z0-9_.]+`),
		socialRule("telegram", `(?i)(?:https?://)?\bt\.me/[A-Za-z0-9_]{5,32}\b`),

		// Names.
		{
			Name:    "name_labelled",
			Kind:    model.KindName,
			Method:  model.MethodStandardPattern,
			Expr:    `(?:[Nn]ame|NAME) ?: ?(` + nameWord + `(?: \p{Lu}\.)?(?: ` + nameWord + `){1,2})`,
			Group:   1,
			Decoder: DecodeName,
		},
		{
			Name:   "name_plain",
			Kind:   model.KindName,
			Method: model.MethodStandardPattern,
			Expr: `(?:(?:Dr|Mr|Mrs|Ms|Prof)\.? )?` + nameWord + `(?: \p{Lu}\.)?(?: ` + nameWord + `){1,3}`,
			Decoder: DecodeName,
		},

		// Titles.
		{
			Name:    "title_labelled",
			Kind:    model.KindTitle,
			Method:  model.MethodStandardPattern,
			Expr:    `(?i:job title|title|position|role) ?: ?(\p{Lu}[\p{L}&/\- ]{0,58}\p{L})`,
			Group:   1,
			Decoder: DecodeText,
		},
		{
			Name:    "title_acronym",
			Kind:    model.KindTitle,
			Method:  model.MethodStandardPattern,
			Expr:    `\b(?:CEO|CTO|CFO|COO|CMO|CIO|CISO|CPO|CRO|SVP|EVP|VP)\b`,
			Decoder: DecodeText,
		},
		{
			Name:   "title_phrase",
			Kind:   model.KindTitle,
			Method: model.MethodStandardPattern,
			Expr: `\b(?i:(?:(?:` + titleModifiers + `) )*(?:` + titleNouns + `))\b` +
				`(?: of (?:the )?\p{Lu}[\p{L}&]+(?: \p{Lu}[\p{L}&]+){0,3})?`,
			Decoder: DecodeText,
		},

		// Companies.
		{
			Name:    "company_labelled",
			Kind:    model.KindCompany,
			Method:  model.MethodStandardPattern,
			Expr:    `(?i:company|organization|organisation|employer) ?: ?(\p{Lu}[\p{L}0-9&'.\- ]{0,58}[\p{L}0-9])`,
			Group:   1,
			Decoder: DecodeText,
		},
		{
			Name:    "company_suffix",
			Kind:    model.KindCompany,
			Method:  model.MethodStandardPattern,
			Expr:    `\p{Lu}[\p{L}0-9&'\-]*(?: (?:&|\p{Lu}[\p{L}0-9&'\-]*)){0,4},? (?:` + companySuffixes + `)\b`,
			Decoder: DecodeText,
		},
	}
}

func socialRule(platform, expr string) Rule {
	return Rule{
		Name:     "social_" + platform,
		Kind:     model.KindSocial,
		Method:   model.MethodStandardPattern,
		Expr:     expr,
		Decoder:  DecodeSocial,
		Platform: platform,
	}
}
