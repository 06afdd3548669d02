// Package associate attributes names, titles, companies, phones and social
// profiles to the email candidates of a page by proximity.
//
// Distances are measured in characters between candidate spans and never
// cross a block boundary.
package associate
