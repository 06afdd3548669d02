// Package model defines the value types shared by every stage of contact extraction.
//
// This package contains the following main types:
//   - Page: one unit of crawler output handed to the engine
//   - NormalizedText: cleaned page text with rewrite and rendered-region markers
//   - Candidate: a single detection hit on one page
//   - AssociatedRecord: an email candidate with attributes found near it
//   - Contact: the deduplicated run-level entity for one address
//   - RunResult: the finalized contacts plus run metadata
//
// Kind, Method, ContentKind and Verdict are closed enums. Stages switch over
// them exhaustively, so adding a value means visiting every switch.
//
// Keeping the types in their own package lets the pipeline stages depend on
// each other only through values.
package model
