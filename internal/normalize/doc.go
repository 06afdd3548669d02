// Package normalize turns raw page content into the cleaned text the detector searches.
//
// Newlines in the output are structural block boundaries. Addresses rebuilt
// from a disguised form are reported as spans so the detector can tell them
// apart from addresses written plainly.
package normalize
