package logger

import (
	"io"
	"log/slog"
	"os"
)

func InitLogger() {
	slog.SetDefault(New(os.Stdout))
}

// New builds the JSON logger used by every binary, writing to w.
func New(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(&ContextHandler{Handler: handler})
}
