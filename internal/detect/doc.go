// Package detect finds contact candidates in normalized page text.
package detect
