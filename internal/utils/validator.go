package utils

import (
	"strings"
	"unicode/utf8"
)

// Discord 对服务器名称的长度限制
const (
	MinServerNameLength = 2
	MaxServerNameLength = 100
)

// NormalizeServerName 去掉首尾空白并校验长度（2-100 个字符）
func NormalizeServerName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n >= MinServerNameLength && n <= MaxServerNameLength
}
