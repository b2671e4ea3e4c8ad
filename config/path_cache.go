package config

import (
	"strings"
	"sync"
)

// PathCache 描述符路径的分段缓存
// GetPath 对同一批路径（如 plugins:email:config:settings:defaultFrom）反复查询，分段结果只解析一次
type PathCache struct {
	segments sync.Map // path -> []string
}

// GetPathSegments 按 : 或 . 切分路径，忽略空段
// 返回的切片被缓存共享，调用方不得修改
func (c *PathCache) GetPathSegments(path string) []string {
	if v, ok := c.segments.Load(path); ok {
		return v.([]string)
	}

	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == ':' || r == '.'
	})
	v, _ := c.segments.LoadOrStore(path, parts)
	return v.([]string)
}

var globalPathCache = &PathCache{}
