package logging

import (
	"bytes"
	"sync"
)

// maxPooledBuffer 超过此容量的 buffer 不回池，避免单条大日志长期占用内存
const maxPooledBuffer = 64 << 10

// formatBuffers 文本格式化使用的 buffer 池
var formatBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	return formatBuffers.Get().(*bytes.Buffer)
}

func putBuffer(b *bytes.Buffer) {
	if b.Cap() > maxPooledBuffer {
		return
	}
	b.Reset()
	formatBuffers.Put(b)
}
