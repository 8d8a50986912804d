package log

import "log/slog"

func TourID[T ~string](id T) slog.Attr {
	return slog.String("tour_id", string(id))
}

func SessionID[T ~string](id T) slog.Attr {
	return slog.String("session_id", string(id))
}

func ComponentID[T ~string](id T) slog.Attr {
	return slog.String("component_id", string(id))
}

func Kind[T ~string](kind T) slog.Attr {
	return slog.String("kind", string(kind))
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
