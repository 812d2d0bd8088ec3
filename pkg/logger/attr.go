package logger

import "log/slog"

// Attribute helpers keep log field names consistent across the codebase.

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}
