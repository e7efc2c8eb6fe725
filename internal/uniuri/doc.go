// Package uniuri generates random strings from an alphanumeric alphabet with crypto/rand.
// The daemon uses it for the bridge access token.
package uniuri
