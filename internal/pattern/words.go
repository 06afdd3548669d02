package pattern

import "strings"

// nameStopwords are capitalized words that commonly precede, follow or imitate a
// person name in page text but are never part of one.
var nameStopwords = map[string]bool{
	// page furniture
	"contact": true, "contacts": true, "email": true, "e-mail": true, "mail": true,
	"phone": true, "tel": true, "fax": true, "mobile": true, "call": true, "us": true,
	"click": true, "here": true, "more": true, "read": true, "view": true, "learn": true,
	"download": true, "home": true, "about": true, "our": true, "the": true, "and": true,
	"for": true, "with": true, "from": true, "by": true, "of": true, "to": true, "at": true,
	"in": true, "on": true, "all": true, "rights": true, "reserved": true, "privacy": true,
	"policy": true, "terms": true, "service": true, "services": true, "copyright": true,
	"menu": true, "search": true, "login": true, "sign": true, "news": true, "blog": true,
	"follow": true, "share": true, "subscribe": true, "welcome": true, "page": true,
	"team": true, "staff": true, "people": true, "directory": true, "website": true,
	"info": true, "admin": true, "webmaster": true, "support": true, "sales": true,
	"marketing": true, "office": true, "address": true, "street": true, "avenue": true,
	"road": true, "suite": true, "floor": true, "building": true, "name": true,
	"title": true, "position": true, "role": true, "company": true, "department": true,

	// titles and ranks
	"president": true, "vice": true, "director": true, "manager": true, "engineer": true,
	"chief": true, "officer": true, "senior": true, "junior": true, "head": true,
	"lead": true, "principal": true, "founder": true, "partner": true, "executive": true,
	"assistant": true, "associate": true, "professor": true, "editor": true,
	"developer": true, "designer": true, "consultant": true, "analyst": true,
	"coordinator": true, "specialist": true, "administrator": true, "secretary": true,
	"chairman": true, "chair": true, "board": true, "general": true, "managing": true,

	// organizations
	"inc": true, "llc": true, "ltd": true, "corp": true, "corporation": true,
	"group": true, "university": true, "college": true,
	"institute": true, "school": true, "foundation": true, "association": true,

	// calendar
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true, "january": true, "february": true, "march": true,
	"april": true, "june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,

	// filler text
	"lorem": true, "ipsum": true, "dolor": true, "sit": true, "amet": true,
}

// isNameStopword reports whether w, ignoring case and trailing punctuation, is a stop word.
func isNameStopword(w string) bool {
	w = strings.ToLower(strings.TrimRight(w, ".,;:"))
	return nameStopwords[w]
}

// DefaultGenericRoles are local parts that address a function rather than a person.
var DefaultGenericRoles = []string{"info", "admin", "support", "noreply", "webmaster"}
