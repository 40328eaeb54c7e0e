package scanner

import (
	"image"
	"time"
)

// EventKind 事件类型
type EventKind string

const (
	// EventRecord 新商品条目落盘
	EventRecord EventKind = "record"
	// EventFrame 预处理后的帧预览
	EventFrame EventKind = "frame"
	// EventState 运行状态切换
	EventState EventKind = "state"
	// EventHealth 健康告警（落盘失败、连续失败降级）
	EventHealth EventKind = "health"
)

// Event 工作协程对外发布的事件
// 仅 Kind 对应的字段有值
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// Record 条目，Kind == EventRecord
	Record *Record
	// Frame 预处理后的帧，Kind == EventFrame
	Frame image.Image
	// Running 新状态，Kind == EventState
	Running bool
	// Detail 告警描述，Kind == EventHealth
	Detail string
}

// Record 一条已通过去重的商品记录
type Record struct {
	Timestamp time.Time
	Name      string
	Price     int
	UnitPrice *int
	Category  Category
	RawText   string
}

// eventBus 有界事件通道
// 发布永不阻塞，通道满时丢弃新事件，帧预览最先被丢
type eventBus struct {
	ch chan Event
}

func newEventBus(size int) *eventBus {
	if size <= 0 {
		size = 64
	}
	return &eventBus{ch: make(chan Event, size)}
}

// emit 非阻塞发布，返回事件是否入队
func (b *eventBus) emit(ev Event) bool {
	select {
	case b.ch <- ev:
		return true
	default:
		return false
	}
}

// emitFrame 帧预览的发布要求更严: 通道剩余容量不足一半时直接丢弃
// 保证状态与记录事件总有空间
func (b *eventBus) emitFrame(ev Event) bool {
	if len(b.ch) >= cap(b.ch)/2 {
		return false
	}
	return b.emit(ev)
}

// Events 返回事件通道供消费方读取
func (b *eventBus) Events() <-chan Event {
	return b.ch
}
