package log

import (
	"github.com/ILYXAAA/SecretsScanner-service/pkg/logger"
	"go.uber.org/zap"
)

func InfoScan(l *zap.Logger, msg string, traceID, project string, filesScanned int) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("project", project),
		zap.Int("files_scanned", filesScanned),
		zap.String("action", ActionScan))
}

func ErrorScan(l *zap.Logger, err error, msg string, traceID, project string) bool {
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.String("project", project),
		zap.Error(err),
		zap.String("action", ActionScan))
}

func InfoClassify(l *zap.Logger, msg string, traceID string, findings int) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.Int("findings", findings),
		zap.String("action", ActionClassify))
}

func ErrorClassify(l *zap.Logger, err error, msg string, traceID string) bool {
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.Error(err),
		zap.String("action", ActionClassify))
}
