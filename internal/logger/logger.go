package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例。未调用 Init 时按 logrus 默认配置输出，
// 方便测试代码直接引用。
var Log = logrus.New()

// Init 初始化日志级别与输出
func Init(level string, file string) error {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel // 默认级别
	}
	Log.SetLevel(lv)

	// 同时输出到控制台和文件
	writers := []io.Writer{os.Stdout}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	Log.SetOutput(io.MultiWriter(writers...))
	return nil
}
