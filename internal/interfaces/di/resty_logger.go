package di

import (
	"fmt"
	"strings"

	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// restyLogger routes resty's printf-style logging into zap
type restyLogger struct {
	logger *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(message(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(message(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(message(format, v...))
}

func message(format string, v ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
