package cmsconfig

import "github.com/gocrud/cmsconfig/core"

// Register 在应用初始化之前执行，插件初始化完成前调用
// 应用开发者可在此扩展
func Register(rt *core.Runtime) {}

// Bootstrap 在应用开始服务之前执行
// 应用开发者可在此扩展
func Bootstrap(rt *core.Runtime) {}
