package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/file"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

const csvContentType = "text/csv; charset=utf-8"

type exportFlags struct {
	apis         []string
	applications []string
	plans        []string
	statuses     []string
	path         string
}

func (f exportFlags) query() domain.SubscriptionQuery {
	q := domain.SubscriptionQuery{
		APIs:         f.apis,
		Applications: f.applications,
		Plans:        f.plans,
	}
	for _, s := range f.statuses {
		q.Statuses = append(q.Statuses, domain.SubscriptionStatus(s))
	}
	return q
}

// exportPath defaults to a timestamped key under exports/.
func (f exportFlags) exportPath(now time.Time) string {
	if f.path != "" {
		return f.path
	}
	return fmt.Sprintf("exports/subscriptions-%s.csv", now.UTC().Format("20060102T150405Z"))
}

func newExportCommand(load configLoader) *cobra.Command {
	var (
		flags exportFlags
		opts  buildOptions
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching subscriptions as CSV to the configured storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := buildApp(ctx, cfg, log, opts)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := file.New(ctx, cfg.Export)
			if err != nil {
				return err
			}

			obj, err := exportSubscriptions(ctx, a.subs, store, flags.query(), flags.exportPath(time.Now()))
			if err != nil {
				return err
			}
			log.InfoContext(ctx, "subscriptions exported",
				slog.String("path", obj.Path),
				slog.Int64("size", obj.Size),
				slog.String("url", obj.URL),
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), obj.URL)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&flags.apis, "api", nil, "only subscriptions to these APIs")
	cmd.Flags().StringSliceVar(&flags.applications, "application", nil, "only subscriptions of these applications")
	cmd.Flags().StringSliceVar(&flags.plans, "plan", nil, "only subscriptions to these plans")
	cmd.Flags().StringSliceVar(&flags.statuses, "status", nil, "only subscriptions in these statuses")
	cmd.Flags().StringVar(&flags.path, "path", "", "object path, defaults to exports/subscriptions-<timestamp>.csv")
	cmd.Flags().StringVar(&opts.seedFile, "seed", "", "JSON or YAML seed file loaded into the memory store")
	return cmd
}

func exportSubscriptions(ctx context.Context, subs subscription.Service, store file.Storage, q domain.SubscriptionQuery, path string) (*file.Object, error) {
	page, err := subs.Search(ctx, q, domain.Pageable{}, subscription.SearchOptions{})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := subs.ExportCSV(ctx, &buf, page.Content); err != nil {
		return nil, err
	}
	return store.Put(ctx, path, csvContentType, &buf)
}
