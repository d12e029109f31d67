// Package domain holds the entities shared by the subscription and API key
// lifecycle managers: subscriptions, keys, plans, applications and the
// request actor, along with the error taxonomy both managers return.
//
// Types here carry no behaviour beyond derived state (key expiry, live
// subscription status) so they can be passed freely between repositories,
// managers and transport layers.
package domain
