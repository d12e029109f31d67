package audit

import "errors"

var (
	ErrEventValidation = errors.New("audit: invalid event")
	ErrStorageFailed   = errors.New("audit: storage failed")
)
