// Package mobile ebitenmobile 绑定入口，用于构建 Android (.aar) 和 iOS (.xcframework) 包
//
// 普通构建下本包为空，移动端代码只在 -tags mobile 时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.arbowling -o build/android/arbowling.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/ARBowling.xcframework -v ./mobile
//
// 构建前需要把 data/bowling.yaml 复制到 mobile/data/，见 embed.go。
package mobile
