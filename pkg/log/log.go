package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v2"
)

var sugarLogger *zap.SugaredLogger
var zapLogger *zap.Logger

// Rotation 描述日志文件的滚动策略，对应配置中的 maxsize/maxbackups/maxage。
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Init 使用默认滚动策略初始化日志。
func Init(level, format, outputpath string) {
	InitWithRotation(level, format, outputpath, Rotation{MaxSizeMB: 100, MaxBackups: 7, MaxAgeDays: 30})
}

// InitWithRotation 初始化全局 logger：始终输出到 stdout，
// outputpath 非空时额外写入 outputpath/app.log，并由 lumberjack 负责滚动。
func InitWithRotation(level, format, outputpath string, rot Rotation) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		panic(fmt.Errorf("invalid log level: %w", err))
	}

	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if format == "console" {
		// 开发环境
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		// 生产环境
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), logLevel),
	}

	if outputpath != "" {
		if err := os.MkdirAll(outputpath, 0755); err != nil {
			panic(fmt.Errorf("failed to create log directory: %w", err))
		}
		// 文件里不需要颜色
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		var fileEncoder zapcore.Encoder
		if format == "console" {
			fileEncoder = zapcore.NewConsoleEncoder(fileCfg)
		} else {
			fileEncoder = zapcore.NewJSONEncoder(fileCfg)
		}
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(outputpath, "app.log"),
			MaxSize:    rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAgeDays,
			Compress:   rot.Compress,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), logLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	zapLogger = logger
	sugarLogger = logger.Sugar()
}

// Info 记录一条 info 级别的日志
func Info(msg string) {
	sugarLogger.Info(msg)
}

// Infof 使用格式化字符串记录一条 info 级别的日志
func Infof(format string, args ...interface{}) {
	sugarLogger.Infof(format, args...)
}

// Infow 使用键值对记录一条 info 级别的日志
func Infow(msg string, keysAndValues ...interface{}) {
	sugarLogger.Infow(msg, keysAndValues...)
}

// Warnf 使用格式化字符串记录一条 warn 级别的日志
func Warnf(template string, args ...interface{}) {
	sugarLogger.Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugarLogger.Warnw(msg, keysAndValues...)
}

// Error 记录一条 error 级别的日志，并附带 error 信息
func Error(msg string, err error) {
	sugarLogger.Errorw(msg, "error", err)
}

// Fatal 记录一条 fatal 级别的日志，并附带 error 信息，然后退出程序
func Fatal(msg string, err error) {
	sugarLogger.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugarLogger.Fatalf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	sugarLogger.Errorf(template, args...)
}

// Sync 将缓冲区中的日志刷新到底层 Writer，程序退出前调用。
func Sync() {
	_ = sugarLogger.Sync()
	_ = zapLogger.Sync()
}

// GetLogger 返回底层 *zap.Logger（给 gorm 日志桥接等场景使用）。
func GetLogger() *zap.Logger {
	return zapLogger
}
