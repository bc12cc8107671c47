package log

import (
	"github.com/ILYXAAA/SecretsScanner-service/pkg/logger"
	"go.uber.org/zap"
)

func InfoRequest(l *zap.Logger, msg string, traceID, path, project string) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("path", path),
		zap.String("project", project),
		zap.String("action", ActionHTTP))
}

func WarnRejected(l *zap.Logger, reason, traceID, path, project string) {
	logger.MakeWarn(l, reason,
		zap.String("trace_id", traceID),
		zap.String("path", path),
		zap.String("project", project),
		zap.String("action", ActionHTTP))
}
