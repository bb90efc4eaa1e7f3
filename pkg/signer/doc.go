// Package signer wraps the external zakosign tool that signs module
// archives and generates signing keys.
//
// The key format belongs to zakosign; this package only locates keys
// (the first ".pem" file in the key directory) and hands paths to the
// binary. A build without any key skips signing; it is not an error.
package signer
