// Package binder decodes HTTP request data into structs.
//
// JSON reads a strict JSON body with a size limit. Query fills struct
// fields tagged `query:"name"` from the URL query string:
//
//	type searchParams struct {
//	    APIs  []string   `query:"api"`
//	    Page  int        `query:"page"`
//	    Keys  bool       `query:"keys"`
//	    Since *time.Time `query:"since"`
//	}
//
//	var p searchParams
//	if err := binder.Query(r, &p); err != nil {
//	    // errors.Is(err, binder.ErrInvalidQuery)
//	}
//
// Slices accept repeated and comma separated values. Times are RFC 3339.
package binder
