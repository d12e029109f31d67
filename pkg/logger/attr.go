package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the acting user under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func SubscriptionID(id string) slog.Attr {
	return slog.String("subscription_id", id)
}

// APIKeyID records the key id. Never log the key value itself.
func APIKeyID(id string) slog.Attr {
	return slog.String("api_key_id", id)
}

func ApplicationID(id string) slog.Attr {
	return slog.String("application_id", id)
}

func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

func APIID(id string) slog.Attr {
	return slog.String("api_id", id)
}
