package logger

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tenantkyc/kycdesk/internal/gelf"
)

// New builds the process logger: a console core on stderr, plus a JSON core
// feeding GELF over UDP when gelfAddr is set. The logger replaces zap's
// globals and the standard library logger.
func New(level, gelfAddr string) (*zap.Logger, error) {
	lvl := ParseLevel(level)

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stderr), lvl),
	}

	if gelfAddr != "" {
		w, err := gelf.New(gelfAddr, "kycdesk")
		if err != nil {
			return nil, err
		}
		jsonCfg := zap.NewProductionEncoderConfig()
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), w, lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	zap.ReplaceGlobals(logger)
	log.SetOutput(zap.NewStdLog(logger).Writer())

	return logger, nil
}

// ParseLevel maps debug/info/warn/error to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
