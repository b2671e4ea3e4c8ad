package logging

import "io"

// Discard 丢弃所有输出的 Logger
func Discard() Logger {
	return NewLoggingBuilder().
		AddConsole(ConsoleLoggerOptions{Output: io.Discard}).
		Build().
		CreateLogger("discard")
}
