package log

import (
	"github.com/ILYXAAA/SecretsScanner-service/pkg/logger"
	"go.uber.org/zap"
)

func InfoDeliver(l *zap.Logger, msg string, project, callbackURL string, attempt int) {
	logger.MakeInfo(l, msg,
		zap.String("project", project),
		zap.String("callback_url", callbackURL),
		zap.Int("attempt", attempt),
		zap.String("action", ActionDeliver))
}

func ErrorDeliver(l *zap.Logger, err error, project, callbackURL string, attempt int) bool {
	return logger.CheckError(err, l, "callback delivery failed",
		zap.String("project", project),
		zap.String("callback_url", callbackURL),
		zap.Int("attempt", attempt),
		zap.Error(err),
		zap.String("action", ActionDeliver))
}

func CriticalDeliverExhausted(l *zap.Logger, project, callbackURL string, attempts int) {
	if l == nil {
		return
	}
	l.Error("delivery retries exhausted, giving up",
		zap.String("project", project),
		zap.String("callback_url", callbackURL),
		zap.Int("attempts", attempts),
		zap.String("action", ActionDeliver),
		zap.String("level_hint", "CRITICAL"))
}
