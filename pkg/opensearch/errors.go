package opensearch

import "errors"

var (
	// ErrNotConfigured is returned by New when OPENSEARCH_ADDRESSES is empty.
	ErrNotConfigured     = errors.New("opensearch: no addresses configured")
	ErrConnectionFailed  = errors.New("opensearch: client setup failed")
	ErrHealthcheckFailed = errors.New("opensearch: cluster not healthy")
)
