package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with CLI conveniences.
// Everything goes to stderr; stdout belongs to the generated script.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level  string    // "debug", "info", "warn", "error"
	Output io.Writer // defaults to os.Stderr
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(lipgloss.NewRenderer(out), "zshrug")),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(level),
	)

	return &Logger{Logger: zap.New(core)}, nil
}

// NewDefault creates a logger with default configuration.
func NewDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		// Fallback to no-op logger
		return NewNop()
	}
	return logger
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// ErrorChain logs err followed by one "caused by" line per wrapped cause.
func (l *Logger) ErrorChain(err error, fields ...zap.Field) {
	causes := Causes(err)
	if len(causes) == 0 {
		return
	}

	l.Error(causes[0], fields...)
	for _, cause := range causes[1:] {
		l.Error("caused by: " + cause)
	}
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// encoderConfig renders "[tag] info message" lines without time or caller.
// The console encoder puts the level first, so the tag is emitted with it.
func encoderConfig(r *lipgloss.Renderer, name string) zapcore.EncoderConfig {
	tag := r.NewStyle().Bold(true).Render("[" + name + "]")
	levels := map[zapcore.Level]lipgloss.Style{
		zapcore.DebugLevel: r.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
		zapcore.InfoLevel:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		zapcore.WarnLevel:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		zapcore.ErrorLevel: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}

	return zapcore.EncoderConfig{
		LevelKey:   "L",
		MessageKey: "M",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			style, ok := levels[level]
			if !ok {
				style = levels[zapcore.ErrorLevel]
			}
			enc.AppendString(tag + " " + style.Render(level.String()))
		},
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}
