// Command itemhub 运行 Item 服务，或执行一次性批处理与数据填充
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
