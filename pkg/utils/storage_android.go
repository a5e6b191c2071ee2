//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// androidDataRoot 应用私有数据目录的根
const androidDataRoot = "/data/data"

// EnsureStorageDir 在 gdata.Open 之前创建成绩存档目录
// gdata 在 Android 上把数据写到 /data/data/{package}/{appName}，但不会自己建目录，
// 目录不可写时成绩存档降级为仅内存
func EnsureStorageDir(appName string) error {
	cmdline, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return fmt.Errorf("read cmdline: %w", err)
	}
	pkg, err := packageFromCmdline(cmdline)
	if err != nil {
		return err
	}

	scoreDir := filepath.Join(androidDataRoot, pkg, appName)
	if err := os.MkdirAll(scoreDir, 0o755); err != nil {
		return fmt.Errorf("create score dir %s: %w", scoreDir, err)
	}

	f, err := os.CreateTemp(scoreDir, ".writable-*")
	if err != nil {
		return fmt.Errorf("score dir %s is not writable: %w", scoreDir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return nil
}
