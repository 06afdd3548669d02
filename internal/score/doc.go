// Package score assigns confidence scores to associated records.
//
// A record starts from the base weight of its detection method and is adjusted
// for domain match, close attribution, role accounts and the validator verdict.
// Corroboration across pages is applied later, at aggregation time.
package score
