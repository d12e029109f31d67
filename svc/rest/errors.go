package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/apimgmt/pkg/binder"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

type errorKind struct {
	err    error
	status int
	key    string
}

var errorKinds = []errorKind{
	{domain.ErrTechnicalManagement, http.StatusInternalServerError, "technicalManagement"},

	{domain.ErrSubscriptionNotFound, http.StatusNotFound, "subscriptionNotFound"},
	{domain.ErrAPIKeyNotFound, http.StatusNotFound, "apiKeyNotFound"},
	{domain.ErrPlanNotFound, http.StatusNotFound, "planNotFound"},
	{domain.ErrApplicationNotFound, http.StatusNotFound, "applicationNotFound"},
	{domain.ErrContentPageNotFound, http.StatusNotFound, "contentPageNotFound"},
	{domain.ErrNotFound, http.StatusNotFound, "notFound"},

	{domain.ErrPlanAlreadySubscribed, http.StatusConflict, "planAlreadySubscribed"},
	{domain.ErrPlanOAuth2OrJWTAlreadySubscribed, http.StatusConflict, "planOAuth2OrJwtAlreadySubscribed"},
	{domain.ErrSubscriptionAlreadyProcessed, http.StatusConflict, "subscriptionAlreadyProcessed"},
	{domain.ErrAPIKeyAlreadyExisting, http.StatusConflict, "apiKeyAlreadyExisting"},
	{domain.ErrAPIKeyAlreadyActivated, http.StatusConflict, "apiKeyAlreadyActivated"},

	{domain.ErrPlanNotYetPublished, http.StatusBadRequest, "planNotYetPublished"},
	{domain.ErrPlanAlreadyClosed, http.StatusBadRequest, "planAlreadyClosed"},
	{domain.ErrPlanNotSubscribable, http.StatusBadRequest, "planNotSubscribable"},
	{domain.ErrPlanNotSubscribableWithSharedAPIKey, http.StatusBadRequest, "planNotSubscribableWithSharedApiKey"},
	{domain.ErrPlanGeneralConditionAccepted, http.StatusBadRequest, "planGeneralConditionAccepted"},
	{domain.ErrPlanGeneralConditionRevision, http.StatusBadRequest, "planGeneralConditionRevision"},
	{domain.ErrPlanRestricted, http.StatusBadRequest, "planRestricted"},
	{domain.ErrApplicationArchived, http.StatusBadRequest, "applicationArchived"},
	{domain.ErrSubscriptionNotUpdatable, http.StatusBadRequest, "subscriptionNotUpdatable"},
	{domain.ErrSubscriptionNotActive, http.StatusBadRequest, "subscriptionNotActive"},
	{domain.ErrSubscriptionNotClosable, http.StatusBadRequest, "subscriptionNotClosable"},
	{domain.ErrSubscriptionNotPausable, http.StatusBadRequest, "subscriptionNotPausable"},
	{domain.ErrSubscriptionNotPaused, http.StatusBadRequest, "subscriptionNotPaused"},
	{domain.ErrSubscriptionNotClosed, http.StatusBadRequest, "subscriptionNotClosed"},
	{domain.ErrSubscriptionClosed, http.StatusBadRequest, "subscriptionClosed"},
	{domain.ErrTransferNotAllowed, http.StatusBadRequest, "transferNotAllowed"},
	{domain.ErrAPIKeyAlreadyExpired, http.StatusBadRequest, "apiKeyAlreadyExpired"},
	{domain.ErrInvalidApplicationAPIKeyMode, http.StatusBadRequest, "invalidApplicationApiKeyMode"},
	{domain.ErrInvalidData, http.StatusBadRequest, "invalidData"},

	{binder.ErrInvalidJSON, http.StatusBadRequest, "invalidJson"},
	{binder.ErrInvalidQuery, http.StatusBadRequest, "invalidQuery"},
	{binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupportedMediaType"},
}

// classify maps err to a status code and a stable error key. Technical
// errors are matched first: a wrapped storage ErrNotFound is a 500.
func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.key
		}
	}
	return http.StatusInternalServerError, "internal"
}

// notFoundAs replaces a repository ErrNotFound with the typed error.
func notFoundAs(err, typed error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return typed
	}
	return domain.Technical("find", err)
}
