package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New は stderr（と指定があれば logFile）に JSON を書き出す *slog.Logger を作成し、
// slog のデフォルトにも設定します。
// 戻り値の cleanup はログファイルを閉じるので、呼び出し側で defer すること。
func New(level, logFile string) (*slog.Logger, func(), error) {
	return NewWithWriter(os.Stderr, level, logFile)
}

// NewWithWriter は出力先を指定して New と同じ処理を行います。
func NewWithWriter(w io.Writer, level, logFile string) (*slog.Logger, func(), error) {
	writers := []io.Writer{w}
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// ParseLevel はログレベル名を slog.Level に変換します。不明な値は info 扱いです。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
