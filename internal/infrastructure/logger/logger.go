package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level: debug, info, warn, error. Пустая строка означает info.
	Level  string
	Stderr bool
	Dir    string
}

func DefaultOptions() Options {
	return Options{
		Level: "info",
		Dir:   "log",
	}
}

func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return lvl, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return lvl, nil
}

// sanitize делает имя безопасным для файловой системы.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "resolver"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
