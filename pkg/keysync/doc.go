// Package keysync publishes API key changes so gateways can refresh their
// key caches without polling the management store.
//
// Events carry the key hash, never the clear value. RedisPublisher fans
// events out over a Redis pub/sub channel; MemoryBus does the same inside
// one process for tests and the in-memory profile.
package keysync
