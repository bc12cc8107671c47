package logger

import "go.uber.org/zap"

// CheckError logs msg at error level when err is non-nil and the logger is
// configured (nil loggers are used to disable a layer's logging via config).
// It returns whether err was non-nil so call sites can fold the check into
// their own control flow.
func CheckError(err error, logger *zap.Logger, msg string, fields ...zap.Field) bool {
	if err != nil {
		if logger != nil {
			logger.Error(msg, fields...)
		}
		return true
	}
	return false
}

func MakeInfo(logger *zap.Logger, msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Info(msg, fields...)
	}
}

func MakeWarn(logger *zap.Logger, msg string, fields ...zap.Field) {
	if logger != nil {
		logger.Warn(msg, fields...)
	}
}
