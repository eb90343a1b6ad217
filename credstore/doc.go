// Package credstore provides credential store implementations for the
// client.
//
// [File] is the store the demo binary uses: a single JSON file replaced
// atomically on every save. Production deployments with stricter secrecy
// requirements should implement the root package's CredentialStore
// interface against their own secret backend instead.
package credstore
