// Package main provides the entry point for the contactscan CLI.
//
// contactscan extracts contact records (emails with the names, titles,
// companies, phone numbers and profile links around them) from crawled
// pages, scores them, and keeps a history of runs.
//
// Usage:
//
//	contactscan extract ./site-dump
//	contactscan compare --site example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
