package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerStruct struct {
	*zap.SugaredLogger
}

var log loggerStruct

func (l *loggerStruct) Init() {
	level := zapcore.InfoLevel
	if verboseLog {
		level = zapcore.DebugLevel
	}
	if quietLog {
		level = zapcore.ErrorLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if verboseLog {
		opts = append(opts, zap.AddCaller())
	}
	l.SugaredLogger = zap.New(core, opts...).Sugar()
}

func (l *loggerStruct) Print(args ...interface{}) {
	l.Info(args...)
}

func (l *loggerStruct) Printf(format string, args ...interface{}) {
	l.Infof(format, args...)
}

// the watch display falls back to plain log lines when stdout is not a
// terminal
func (l *loggerStruct) PrintStatusLog(line string) {
	l.Info(line)
}
