// Package keys defines the canonical RSA parameter model, the private-key
// completion logic and the contracts between codecs, the platform key store
// and the application services that orchestrate them.
package keys
