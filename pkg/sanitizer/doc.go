// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent and never fail: invalid input collapses to an
// empty string or an empty slice.
//
// Normalization includes:
//   - Emails: trimmed and lowercased, so uniqueness is case-insensitive
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - URLs: default to HTTPS, lowercase host, drop "www." and utm_* parameters, keep path case
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
