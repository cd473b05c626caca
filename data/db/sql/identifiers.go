package sql

import "strings"

// isSafeIdentifier 判断标识符是否只由 [A-Za-z_][A-Za-z0-9_]* 段以点连接而成。
// 只做 ASCII 校验，足以挡住空格、分号等注入片段。
func isSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			letter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
			digit := ch >= '0' && ch <= '9'
			if !letter && !(digit && i > 0) {
				return false
			}
		}
	}
	return true
}

func mustIdentifier(builder, kind, name string) {
	if !isSafeIdentifier(name) {
		panic(builder + ": unsafe " + kind + " name " + name)
	}
}
