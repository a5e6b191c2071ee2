//go:build !android

package utils

// EnsureStorageDir 桌面和 iOS 上 gdata 会自己创建存档目录，这里无需处理
func EnsureStorageDir(appName string) error {
	return nil
}
