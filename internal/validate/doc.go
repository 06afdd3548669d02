// Package validate provides the email validation adapter.
//
// A Validator answers Valid, Invalid or Unknown for an address. Noop is the
// default and Syntax rejects addresses that can never be delivered without
// touching the network. Cache makes sure each address is asked about once per run.
package validate
