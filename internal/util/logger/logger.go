package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// Init builds the process logger at level and installs it as the zap global.
func Init(level string) error {
	logLevel := zapcore.DebugLevel
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		return err
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(logLevel)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return err
	}

	Log = l.Named("paymentref")
	zap.ReplaceGlobals(Log)
	return nil
}

func Sync() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}
