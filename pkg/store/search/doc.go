// Package search keeps subscriptions in an OpenSearch index for free text
// lookups. Index implements the subscription service Indexer.
package search
