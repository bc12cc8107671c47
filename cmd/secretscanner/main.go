package main

import (
	"os"

	"github.com/ILYXAAA/SecretsScanner-service/config"
	"github.com/ILYXAAA/SecretsScanner-service/internal/app"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("can not get application config: %s", err)
	}

	logger := newFileLogger()
	defer logger.Sync() //nolint:errcheck

	app.Run(logger, cfg)
}

// newFileLogger mirrors secrets_scanner_service.log's rotation policy
// (10MB per file, 5 backups kept) from the original logging.handlers
// RotatingFileHandler setup.
func newFileLogger() *zap.Logger {
	const logFile = "secrets_scanner_service.log"

	writeSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		Compress:   false,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, writeSyncer, zap.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zap.InfoLevel),
	)

	return zap.New(core)
}
