package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Healthcheck returns a probe that fails when the cluster is unreachable or
// its health is red. Yellow clusters still serve searches.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Cluster.Health(client.Cluster.Health.WithContext(ctx))
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("status %d", res.StatusCode))
		}

		var health struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if health.Status == "red" {
			return fmt.Errorf("%w: cluster status red", ErrHealthcheckFailed)
		}
		return nil
	}
}
