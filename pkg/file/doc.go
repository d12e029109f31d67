// Package file stores export artifacts on the local filesystem or in S3.
//
// Both backends implement Storage and accept slash separated relative paths.
// Paths containing ".." are rejected with ErrInvalidPath.
//
//	store, err := file.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	obj, err := store.Put(ctx, "exports/subscriptions.csv", "text/csv", &buf)
package file
