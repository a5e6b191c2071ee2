package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid bowling config")

// BowlingConfig 保龄球小游戏调参配置
//
// 配置文件位置: data/bowling.yaml
// 时间单位统一为秒，长度单位为米（AR 世界坐标）。
type BowlingConfig struct {
	Lane  LaneConfig  `yaml:"lane"`
	Pins  PinsConfig  `yaml:"pins"`
	Ball  BallConfig  `yaml:"ball"`
	Round RoundConfig `yaml:"round"`
}

// LaneConfig 球道缩放参数
type LaneConfig struct {
	// NativeLength 球道模型原始长度
	NativeLength float64 `yaml:"nativeLength"`

	// MinLength / MaxLength 缩放后球道长度的允许范围
	MinLength float64 `yaml:"minLength"`
	MaxLength float64 `yaml:"maxLength"`

	// VerticalOffset 球道相对点击点的竖直偏移（模型原点对齐用）
	VerticalOffset float64 `yaml:"verticalOffset"`
}

// PinOffset 球瓶在球道本地坐标系下的偏移
// 纵向以"距球道末端"表示：z = Length/2 - Back
type PinOffset struct {
	X    float64 `yaml:"x"`
	Back float64 `yaml:"back"`
}

// PinsConfig 球瓶参数
type PinsConfig struct {
	// RestHeight 球瓶中心离球道面的高度
	RestHeight float64 `yaml:"restHeight"`

	// StandingToleranceDeg 直立判定阈值（度），前向轴与世界上方向夹角小于该值视为直立
	StandingToleranceDeg float64 `yaml:"standingToleranceDeg"`

	// HideDelay 计分后延迟隐藏时间
	HideDelay float64 `yaml:"hideDelay"`

	// FallenSweepDelay 出界路径上隐藏倒瓶的延迟
	FallenSweepDelay float64 `yaml:"fallenSweepDelay"`

	// Layout 十个球瓶的三角布局
	Layout []PinOffset `yaml:"layout"`
}

// BallConfig 投掷参数
type BallConfig struct {
	ThrowForceMultiplier float64 `yaml:"throwForceMultiplier"`
	ReleaseDamping       float64 `yaml:"releaseDamping"`
	MaxSpeed             float64 `yaml:"maxSpeed"`

	// SettleThreshold 线速度和角速度都低于该值视为静止
	SettleThreshold float64 `yaml:"settleThreshold"`

	// MinFlightTime 出手后至少经过该时间才做静止判定
	MinFlightTime float64 `yaml:"minFlightTime"`

	// FallFloor 高度低于该值视为出界
	FallFloor float64 `yaml:"fallFloor"`

	// OutOfBoundsDepth 深度坐标低于该值视为出界
	OutOfBoundsDepth float64 `yaml:"outOfBoundsDepth"`

	// RespawnDelay 出界后延迟重生时间
	RespawnDelay float64 `yaml:"respawnDelay"`

	// SpawnForward / SpawnDrop 相对相机的出生点
	SpawnForward float64 `yaml:"spawnForward"`
	SpawnDrop    float64 `yaml:"spawnDrop"`

	// DragDepth 拖拽未命中平面时的屏幕投影深度
	DragDepth float64 `yaml:"dragDepth"`
}

// RoundConfig 回合规则
type RoundConfig struct {
	// ThrowsPerFrame 每局投掷次数，达到后强制复位
	ThrowsPerFrame int `yaml:"throwsPerFrame"`
}

// DefaultPinLayout 标准十瓶三角布局
func DefaultPinLayout() []PinOffset {
	return []PinOffset{
		{X: 0, Back: 1.25},
		{X: 0.133333, Back: 1.00},
		{X: -0.133333, Back: 1.00},
		{X: 0.2666667, Back: 0.75},
		{X: 0, Back: 0.75},
		{X: -0.2666667, Back: 0.75},
		{X: 0.4, Back: 0.5},
		{X: 0.133333, Back: 0.5},
		{X: -0.133333, Back: 0.5},
		{X: -0.4, Back: 0.5},
	}
}

// DefaultBowlingConfig 返回默认配置（与 data/bowling.yaml 一致）
func DefaultBowlingConfig() *BowlingConfig {
	return &BowlingConfig{
		Lane: LaneConfig{
			NativeLength:   2.0,
			MinLength:      3.0,
			MaxLength:      8.0,
			VerticalOffset: -1.0,
		},
		Pins: PinsConfig{
			RestHeight:           0.255,
			StandingToleranceDeg: 135,
			HideDelay:            1.0,
			FallenSweepDelay:     3.0,
			Layout:               DefaultPinLayout(),
		},
		Ball: BallConfig{
			ThrowForceMultiplier: 100,
			ReleaseDamping:       0.5,
			MaxSpeed:             300,
			SettleThreshold:      0.01,
			MinFlightTime:        0.25,
			FallFloor:            -2,
			OutOfBoundsDepth:     -2,
			RespawnDelay:         1.0,
			SpawnForward:         1.0,
			SpawnDrop:            0.5,
			DragDepth:            1.0,
		},
		Round: RoundConfig{
			ThrowsPerFrame: 2,
		},
	}
}

// LoadBowlingConfig 加载保龄球配置
//
// 参数:
//   - path: 配置文件路径（如 "data/bowling.yaml"）
//
// 返回:
//   - *BowlingConfig: 加载并校验后的配置
//   - error: 读取、解析或校验失败时返回错误
func LoadBowlingConfig(path string) (*BowlingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bowling config: %w", err)
	}
	return ParseBowlingConfig(data)
}

// ParseBowlingConfig 从 YAML 字节解析配置
// 未出现的字段保留默认值
func ParseBowlingConfig(data []byte) (*BowlingConfig, error) {
	cfg := DefaultBowlingConfig()
	// 布局表整体替换，不与默认值合并
	cfg.Pins.Layout = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bowling config: %w", err)
	}
	if len(cfg.Pins.Layout) == 0 {
		cfg.Pins.Layout = DefaultPinLayout()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置有效性
func (c *BowlingConfig) Validate() error {
	if !(c.Lane.NativeLength > 0) {
		return fmt.Errorf("%w: lane.nativeLength must be > 0, got %v", ErrInvalidConfig, c.Lane.NativeLength)
	}
	if !(c.Lane.MinLength > 0) || c.Lane.MinLength > c.Lane.MaxLength {
		return fmt.Errorf("%w: lane length range invalid: min(%.2f) max(%.2f)",
			ErrInvalidConfig, c.Lane.MinLength, c.Lane.MaxLength)
	}
	if len(c.Pins.Layout) != 10 {
		return fmt.Errorf("%w: pins.layout must have 10 entries, got %d", ErrInvalidConfig, len(c.Pins.Layout))
	}
	if c.Pins.StandingToleranceDeg <= 0 || c.Pins.StandingToleranceDeg > 180 {
		return fmt.Errorf("%w: pins.standingToleranceDeg out of (0, 180]: %v", ErrInvalidConfig, c.Pins.StandingToleranceDeg)
	}
	if c.Pins.HideDelay < 0 || c.Pins.FallenSweepDelay < 0 || c.Ball.RespawnDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	if !(c.Ball.MaxSpeed > 0) {
		return fmt.Errorf("%w: ball.maxSpeed must be > 0, got %v", ErrInvalidConfig, c.Ball.MaxSpeed)
	}
	if c.Ball.SettleThreshold <= 0 || math.IsNaN(c.Ball.SettleThreshold) {
		return fmt.Errorf("%w: ball.settleThreshold must be > 0", ErrInvalidConfig)
	}
	if c.Round.ThrowsPerFrame < 1 {
		return fmt.Errorf("%w: round.throwsPerFrame must be >= 1, got %d", ErrInvalidConfig, c.Round.ThrowsPerFrame)
	}
	return nil
}
