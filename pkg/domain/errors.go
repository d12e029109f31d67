package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a record does not exist.
// Managers translate it into the typed not-found errors below.
var ErrNotFound = errors.New("record not found")

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAPIKeyNotFound       = errors.New("api key not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrContentPageNotFound  = errors.New("content page not found")

	ErrPlanNotYetPublished                 = errors.New("plan is not yet published")
	ErrPlanAlreadyClosed                   = errors.New("plan is already closed")
	ErrPlanNotSubscribable                 = errors.New("plan is not subscribable")
	ErrPlanNotSubscribableWithSharedAPIKey = errors.New("plan is not subscribable with a shared api key")
	ErrPlanAlreadySubscribed               = errors.New("plan is already subscribed by the application")
	ErrPlanOAuth2OrJWTAlreadySubscribed    = errors.New("another oauth2 or jwt plan is already subscribed by the application")
	ErrPlanGeneralConditionAccepted        = errors.New("plan general conditions must be accepted")
	ErrPlanGeneralConditionRevision        = errors.New("plan general conditions revision does not match")
	ErrPlanRestricted                      = errors.New("plan is restricted")
	ErrApplicationArchived                 = errors.New("application is archived")

	ErrSubscriptionNotUpdatable     = errors.New("subscription is not updatable")
	ErrSubscriptionNotActive        = errors.New("subscription is not active")
	ErrSubscriptionAlreadyProcessed = errors.New("subscription has already been processed")
	ErrSubscriptionNotClosable      = errors.New("subscription is not closable")
	ErrSubscriptionNotPausable      = errors.New("subscription is not pausable")
	ErrSubscriptionNotPaused        = errors.New("subscription is not paused")
	ErrSubscriptionNotClosed        = errors.New("subscription is not closed")
	ErrSubscriptionClosed           = errors.New("subscription is closed")
	ErrTransferNotAllowed           = errors.New("subscription transfer is not allowed")

	ErrAPIKeyAlreadyExisting        = errors.New("api key already exists")
	ErrAPIKeyAlreadyExpired         = errors.New("api key is already expired")
	ErrAPIKeyAlreadyActivated       = errors.New("api key is already activated")
	ErrInvalidApplicationAPIKeyMode = errors.New("invalid application api key mode")

	ErrInvalidData = errors.New("invalid data")

	ErrTechnicalManagement = errors.New("technical management error")
)

// TechnicalError wraps an infrastructure fault raised while performing Op.
// It matches ErrTechnicalManagement with errors.Is so callers never need to
// know the storage error type.
type TechnicalError struct {
	Op  string
	Err error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrTechnicalManagement, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTechnicalManagement, e.Op, e.Err)
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func (e *TechnicalError) Is(target error) bool {
	return target == ErrTechnicalManagement
}

// Technical wraps err as a TechnicalError for op. Typed domain errors pass
// through unchanged so the caller keeps seeing them.
func Technical(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &TechnicalError{Op: op, Err: err}
}

// Technicalf builds a TechnicalError without an underlying cause.
func Technicalf(format string, args ...any) error {
	return &TechnicalError{Op: fmt.Sprintf(format, args...)}
}

var domainErrors = []error{
	ErrSubscriptionNotFound, ErrAPIKeyNotFound, ErrPlanNotFound, ErrApplicationNotFound, ErrContentPageNotFound,
	ErrPlanNotYetPublished, ErrPlanAlreadyClosed, ErrPlanNotSubscribable, ErrPlanNotSubscribableWithSharedAPIKey,
	ErrPlanAlreadySubscribed, ErrPlanOAuth2OrJWTAlreadySubscribed, ErrPlanGeneralConditionAccepted,
	ErrPlanGeneralConditionRevision, ErrPlanRestricted, ErrApplicationArchived,
	ErrSubscriptionNotUpdatable, ErrSubscriptionNotActive, ErrSubscriptionAlreadyProcessed, ErrSubscriptionNotClosable,
	ErrSubscriptionNotPausable, ErrSubscriptionNotPaused, ErrSubscriptionNotClosed, ErrSubscriptionClosed,
	ErrTransferNotAllowed, ErrAPIKeyAlreadyExisting, ErrAPIKeyAlreadyExpired, ErrAPIKeyAlreadyActivated,
	ErrInvalidApplicationAPIKeyMode, ErrInvalidData, ErrTechnicalManagement,
}

// IsDomainError reports whether err carries one of the typed lifecycle errors.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
