package utils

import "os"

// MobileEmulateEnv 桌面端模拟移动模式的环境变量
const MobileEmulateEnv = "ARBOWLING_MOBILE_EMULATE"

// IsMobile 是否按移动端交互运行（隐藏键盘提示、只接受触摸拖拽投球）
// 使用 -tags mobile 构建时恒为 true；
// 桌面端可设置 ARBOWLING_MOBILE_EMULATE=1 强制开启，用于本地调试
func IsMobile() bool {
	return mobileBuild || os.Getenv(MobileEmulateEnv) == "1"
}
