// Package opensearch connects to an OpenSearch cluster.
//
// Config is loaded from OPENSEARCH_* variables. New builds a
// *opensearch.Client and runs Healthcheck once so that a misconfigured
// cluster fails at startup:
//
//	cfg, _ := config.Load[opensearch.Config]()
//	client, err := opensearch.New(ctx, cfg)
//	if errors.Is(err, opensearch.ErrNotConfigured) {
//	    // run without full-text search
//	}
//
// The subscription index built on top of the client lives in pkg/store/search.
package opensearch
