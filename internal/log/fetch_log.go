package log

import (
	"github.com/ILYXAAA/SecretsScanner-service/pkg/logger"
	"go.uber.org/zap"
)

func InfoResolveRef(l *zap.Logger, msg string, traceID, repoURL, refType, ref string) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("repo_url", repoURL),
		zap.String("ref_type", refType),
		zap.String("ref", ref),
		zap.String("action", ActionResolveRef))
}

func ErrorResolveRef(l *zap.Logger, err error, msg string, traceID, repoURL, refType, ref string) bool {
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.String("repo_url", repoURL),
		zap.String("ref_type", refType),
		zap.String("ref", ref),
		zap.Error(err),
		zap.String("action", ActionResolveRef))
}

func InfoFetch(l *zap.Logger, msg string, traceID, repoURL, commitID, authMethod string) {
	logger.MakeInfo(l, msg,
		zap.String("trace_id", traceID),
		zap.String("repo_url", repoURL),
		zap.String("commit_id", commitID),
		zap.String("auth_method", authMethod),
		zap.String("action", ActionFetch))
}

func ErrorFetch(l *zap.Logger, err error, msg string, traceID, repoURL, commitID string) bool {
	return logger.CheckError(err, l, msg,
		zap.String("trace_id", traceID),
		zap.String("repo_url", repoURL),
		zap.String("commit_id", commitID),
		zap.Error(err),
		zap.String("action", ActionFetch))
}
