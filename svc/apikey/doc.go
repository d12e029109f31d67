// Package apikey manages the lifecycle of API keys bound to subscriptions:
// generation, renewal with a grace period, revocation, reactivation,
// expiry updates and lookups.
//
// Applications in SHARED key mode reuse one live key across all of their
// subscriptions, so Generate appends the subscription to that key instead of
// minting a new one. Every other application gets one key per subscription.
//
// Generation and renewal are serialised per application (SHARED) or per
// subscription inside the process. Audit, notification and key sync
// side effects run after the store write and never fail the operation.
package apikey
