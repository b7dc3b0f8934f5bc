package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局 logger，Init 之前为 Nop，便于测试中直接使用
var Log = zap.NewNop()

// Init 按运行模式初始化 logger：release 输出 JSON，其余输出彩色开发格式
func Init(mode string) error {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Log = l
	zap.ReplaceGlobals(l)
	return nil
}

// Sync 刷新缓冲
func Sync() {
	_ = Log.Sync()
}

// LogPanic 记录 recover 到的 panic 及堆栈
func LogPanic(r any, fields ...zap.Field) {
	Log.Error("💥 panic recovered", append(fields, zap.Any("panic", r), zap.StackSkip("stack", 1))...)
}
