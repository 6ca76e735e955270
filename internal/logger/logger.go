package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup настраивает глобальный zerolog-логгер. В development пишем в консоль человекочитаемо.
func Setup(level string, development bool) zerolog.Logger {
	return SetupWithOutput(level, development, os.Stdout)
}

func SetupWithOutput(level string, development bool, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	w := out
	if development {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	log.Logger = l
	return l
}
