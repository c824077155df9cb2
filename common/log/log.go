package log

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var logger = log.New(os.Stdout)

func InitLog(appName string, logLevel string) {
	// 使用 os.Stdout，IDE 控制台不会把所有日志标红
	logger = log.New(os.Stdout)
	logger.SetPrefix(appName)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetReportCaller(true)
	logger.SetCallerOffset(1)
	SetLevel(logLevel)
}

// SetLevel 运行中调整日志级别，配置热更新时调用
func SetLevel(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// IsDebug 调试级别下才构造搜索轨迹
func IsDebug() bool {
	return logger.GetLevel() <= log.DebugLevel
}

func Fatal(format string, args ...any) {
	if len(args) == 0 {
		logger.Fatalf(format, args...)
	} else {
		logger.Fatalf(format, args...)
	}
}

func Info(format string, args ...any) {
	if len(args) == 0 {
		logger.Infof(format, args...)
	} else {
		logger.Infof(format, args...)
	}
}

func Warn(format string, args ...any) {
	if len(args) == 0 {
		logger.Warnf(format, args...)
	} else {
		logger.Warnf(format, args...)
	}
}

func Error(format string, args ...any) {
	if len(args) == 0 {
		logger.Errorf(format, args...)
	} else {
		logger.Errorf(format, args...)
	}
}

func Debug(format string, args ...any) {
	if len(args) == 0 {
		logger.Debugf(format, args...)
	} else {
		logger.Debugf(format, args...)
	}
}

// Tracer 把向听搜索轨迹输出到 debug 日志
type Tracer struct{}

func (Tracer) Trace(format string, args ...any) {
	logger.Debugf(format, args...)
}
