package components

// PinCount 一组球瓶的数量
const PinCount = 10

// PinComponent 球瓶组件
//
// 静止位姿不在组件里保存，由 PinRegistrySystem 在首次放置球道时记录一次，
// 之后只读。
type PinComponent struct {
	// Index 稳定编号（0-9），与布局表一一对应
	Index int

	// IsActive 是否可见/参与物理
	IsActive bool

	// IsScored 本轮是否已计分
	IsScored bool

	// Generation 每次复位时递增
	// 延迟隐藏回调捕获该值，复位后旧回调自动失效
	Generation uint64
}
