// Package pattern holds the declarative rule table used to find contact data in text.
//
// A Rule pairs an RE2 expression with a Decoder that turns the raw match into a
// normalized value. Rules are compiled once into a Library; order is priority.
// Compile rejects the whole set if any rule is malformed.
package pattern
