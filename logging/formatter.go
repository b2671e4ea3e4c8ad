package logging

import "time"

// Formatter 把一条日志编码为一次写入的字节，结果须包含结尾换行
// 已有实现：TextFormatter、JsonFormatter
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry 交给 Formatter 的日志条目
// Fields 已按 WithFields 在前、调用参数在后的顺序合并
type LogEntry struct {
	Time     time.Time
	Level    LogLevel
	Category string
	Message  string
	Fields   []Field
}
