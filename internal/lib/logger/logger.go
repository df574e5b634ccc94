package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/printshop/internal/lib/logger/handlers/slogpretty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// switching logger
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger инициализирует логгер в зависимости от переданного окружения
// для локальной разработки используется цветной вывод (pretty), а для dev/prod JSON.
// Если указан file, логи пишутся в файл с ротацией, чтобы не мешать выводу CLI.
func SetupLogger(env, file string) *slog.Logger {
	var log *slog.Logger

	out := output(file)

	switch env {
	case EnvLocal:
		log = setupPrettySlog(out, file == "")
	case EnvDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case EnvProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

// Discard - логгер для тестов и тихого режима
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func output(file string) io.Writer {
	if file == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    20, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}
}

func setupPrettySlog(out io.Writer, colored bool) *slog.Logger {
	color.NoColor = !colored

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(out)
	return slog.New(handler)
}
