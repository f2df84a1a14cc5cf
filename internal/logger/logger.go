// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the bot logs.
type Options struct {
	Level string
	// File enables a rotating log file next to the console output.
	File string
}

// New returns a console logger, teeing into a rotating file when opts.File is set.
func New(opts Options) zerolog.Logger {
	return build(opts, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
}

func build(opts Options, console io.Writer) zerolog.Logger {
	var out io.Writer = console
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	return zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
