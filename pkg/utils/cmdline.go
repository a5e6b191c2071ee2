package utils

import (
	"bytes"
	"fmt"
	"strings"
)

// packageFromCmdline 从 /proc/self/cmdline 内容中取出 Android 应用包名
// cmdline 以 NUL 分隔参数，应用进程的第一个参数就是包名，
// 带 ":service" 后缀的子进程共用主进程的数据目录
func packageFromCmdline(data []byte) (string, error) {
	first, _, _ := bytes.Cut(data, []byte{0})
	name := strings.TrimSpace(string(first))
	name, _, _ = strings.Cut(name, ":")
	if name == "" {
		return "", fmt.Errorf("empty process name in cmdline")
	}
	if strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("process %q is not an app package", name)
	}
	return name, nil
}
