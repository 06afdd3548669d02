// Package aggregate merges associated records into one Contact per address.
//
// The Aggregator is the only shared mutable state of a run. Records for the
// same address are merged by closest attribution, set union and maximum score,
// then corroborated by the number of distinct pages the address appeared on.
package aggregate
