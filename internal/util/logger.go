package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger 初始化全局日志
// pretty 为 true 时输出彩色控制台格式，否则输出 JSON。
func InitLogger(level string, pretty bool) {
	InitLoggerTo(os.Stderr, level, pretty)
}

// InitLoggerTo 同 InitLogger，可指定输出
func InitLoggerTo(w io.Writer, level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// ParseLevel 无法识别时为 info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

func LogDebug(msg string, fields map[string]interface{}) {
	withFields(log.Debug(), fields).Msg(msg)
}

func LogInfo(msg string, fields map[string]interface{}) {
	withFields(log.Info(), fields).Msg(msg)
}

func LogWarn(msg string, fields map[string]interface{}) {
	withFields(log.Warn(), fields).Msg(msg)
}

func LogError(msg string, err error, fields map[string]interface{}) {
	withFields(log.Error().Err(err), fields).Msg(msg)
}
