package log

import (
	"github.com/ILYXAAA/SecretsScanner-service/pkg/logger"
	"go.uber.org/zap"
)

func InfoEnqueue(l *zap.Logger, msg string, project string, depth int) {
	logger.MakeInfo(l, msg,
		zap.String("project", project),
		zap.Int("queue_depth", depth),
		zap.String("action", ActionEnqueue))
}

func WarnQueueFull(l *zap.Logger, project string, depth, maxWorkers int) {
	logger.MakeWarn(l, "queue full, rejecting job",
		zap.String("project", project),
		zap.Int("queue_depth", depth),
		zap.Int("max_workers", maxWorkers),
		zap.String("action", ActionEnqueue))
}

func InfoDispatch(l *zap.Logger, msg string, project string, kind string) {
	logger.MakeInfo(l, msg,
		zap.String("project", project),
		zap.String("kind", kind),
		zap.String("action", ActionDispatch))
}

func ErrorCleanup(l *zap.Logger, err error, scratchDir string) bool {
	return logger.CheckError(err, l, "cleanup error",
		zap.String("scratch_dir", scratchDir),
		zap.Error(err),
		zap.String("action", ActionCleanup))
}
