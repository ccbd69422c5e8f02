// Package utils holds the value conversions shared by the ledger and the
// member source: stringifying scanned SQL values and reading ledger flags.
package utils
