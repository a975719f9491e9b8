package main

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/roach88/banksim/internal/config"
)

func newLogger(output io.Writer, cfg config.Config) *slog.Logger {
	handler := tint.NewHandler(output, &tint.Options{
		Level:      cfg.LogLevel,
		AddSource:  false,
		TimeFormat: "15:04:05.000",
		NoColor:    cfg.NoColor,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}
