package scanner

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mtscan/mtscanner/internal/logger"
	"github.com/mtscan/mtscanner/pkg/config"
	"github.com/mtscan/mtscanner/pkg/screen"
)

const (
	// idlePollInterval 停止状态下的轮询间隔
	idlePollInterval = 50 * time.Millisecond
	// minTextLength 短于此长度的识别文本直接丢弃
	minTextLength = 4
	// processGateTTL 进程检测结果的缓存时长
	processGateTTL = 5 * time.Second
)

// BackoffPolicy 单帧失败的退避策略
type BackoffPolicy struct {
	// Backoff 单次失败后的休眠时长
	Backoff time.Duration
	// MaxConsecutive 连续失败达到此次数时发布降级告警
	MaxConsecutive int
}

// DefaultBackoffPolicy 默认退避策略
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Backoff:        100 * time.Millisecond,
		MaxConsecutive: 20,
	}
}

// TextSource 图像到文本的识别源
type TextSource interface {
	GetText(img image.Image) (string, error)
}

// PreprocessFunc 帧预处理函数
type PreprocessFunc func(img image.Image) (image.Image, error)

// RegionFunc 根据配置计算当前采集区域
type RegionFunc func(cfg *config.ScannerConfig) screen.Region

// RecordSink 记录落盘目标
type RecordSink interface {
	Append(rec Record) error
}

// ProcessGate 游戏客户端存活检测
type ProcessGate interface {
	Present(filter string) bool
}

// iterationError 单帧失败及其阶段
type iterationError struct {
	Kind string // capture | ocr | persist
	Err  error
}

func (e *iterationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Deps 工作协程的依赖注入
type Deps struct {
	Config     *config.Store
	Capturer   screen.Capturer
	Region     RegionFunc
	Preprocess PreprocessFunc
	OCR        TextSource
	Sink       RecordSink
	History    RecordSink
	Gate       ProcessGate
	Backoff    BackoffPolicy
	EventSize  int
}

// Worker 扫描工作协程
// Start/Stop 切换运行状态，Run 在独立协程中执行循环
type Worker struct {
	deps    Deps
	running atomic.Bool
	bus     *eventBus
	dedup   *Cache
	now     func() time.Time

	consecutiveFailures int
	gateResult          bool
	gateChecked         time.Time
}

// NewWorker 创建工作协程
func NewWorker(deps Deps) *Worker {
	if deps.Backoff.Backoff <= 0 {
		deps.Backoff = DefaultBackoffPolicy()
	}
	if deps.Region == nil {
		deps.Region = func(cfg *config.ScannerConfig) screen.Region {
			return screen.PointerRegion(cfg.ROIWidth, cfg.ROIHeight, cfg.MarginX, cfg.MarginY)
		}
	}

	cfg := deps.Config.Snapshot()
	window := time.Duration(cfg.DedupSeconds * float64(time.Second))

	return &Worker{
		deps:  deps,
		bus:   newEventBus(deps.EventSize),
		dedup: NewCache(window),
		now:   time.Now,
	}
}

// Events 返回事件通道
func (w *Worker) Events() <-chan Event {
	return w.bus.Events()
}

// Start 进入运行状态
func (w *Worker) Start() {
	if w.running.CompareAndSwap(false, true) {
		logger.Info("扫描已启动")
		w.bus.emit(Event{Kind: EventState, Timestamp: w.now(), Running: true})
	}
}

// Stop 进入停止状态，循环在下一次轮询时空转
func (w *Worker) Stop() {
	if w.running.CompareAndSwap(true, false) {
		logger.Info("扫描已停止")
		w.bus.emit(Event{Kind: EventState, Timestamp: w.now(), Running: false})
	}
}

// Running 返回当前运行状态
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Run 执行扫描循环直到 ctx 取消
// 停止状态下以 50ms 间隔轮询，运行状态下按 fps 节流
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if !w.running.Load() {
			w.sleep(ctx, idlePollInterval)
			continue
		}

		cfg := w.deps.Config.Snapshot()
		period := time.Duration(float64(time.Second) / maxFloat(0.5, cfg.FPS))

		start := w.now()
		err := w.iterate(ctx, cfg)
		elapsed := w.now().Sub(start)

		if err != nil {
			w.onFailure(err)
			w.sleep(ctx, w.deps.Backoff.Backoff)
			continue
		}
		w.consecutiveFailures = 0

		if rest := period - elapsed; rest > 0 {
			w.sleep(ctx, rest)
		}
	}
}

// iterate 执行一帧的完整流水线
func (w *Worker) iterate(ctx context.Context, cfg *config.ScannerConfig) error {
	startTime := w.now()

	if !w.gateOpen(cfg) {
		return nil
	}

	region := w.deps.Region(cfg)
	img, err := w.deps.Capturer.Capture(region)
	if err != nil {
		return &iterationError{Kind: "capture", Err: err}
	}

	if w.deps.Preprocess != nil {
		processed, err := w.deps.Preprocess(img)
		if err != nil {
			return &iterationError{Kind: "capture", Err: fmt.Errorf("预处理失败: %w", err)}
		}
		img = processed
	}

	w.bus.emitFrame(Event{Kind: EventFrame, Timestamp: w.now(), Frame: img})

	text, err := w.deps.OCR.GetText(img)
	if err != nil {
		return &iterationError{Kind: "ocr", Err: err}
	}

	text = NormalizeText(text)
	if len([]rune(text)) < minTextLength {
		return nil
	}

	entry := ParseFields(text)
	if entry.Name == "" || entry.Price == nil {
		return nil
	}

	if !w.relevant(cfg, entry.Name) {
		return nil
	}

	now := w.now()
	key := Fingerprint(entry.Name, entry.Price)
	if !w.dedup.ShouldLog(key, now) {
		return nil
	}

	rec := Record{
		Timestamp: now,
		Name:      entry.Name,
		Price:     *entry.Price,
		UnitPrice: entry.UnitPrice,
		Category:  Classify(entry.Name),
		RawText:   text,
	}

	if err := w.deps.Sink.Append(rec); err != nil {
		w.bus.emit(Event{Kind: EventHealth, Timestamp: now, Detail: fmt.Sprintf("落盘失败: %v", err)})
		return &iterationError{Kind: "persist", Err: err}
	}
	if w.deps.History != nil {
		if err := w.deps.History.Append(rec); err != nil {
			// 历史库是辅助存储，失败只告警不中断
			w.bus.emit(Event{Kind: EventHealth, Timestamp: now, Detail: fmt.Sprintf("历史库写入失败: %v", err)})
		}
	}

	w.bus.emit(Event{Kind: EventRecord, Timestamp: now, Record: &rec})

	elapsed := float64(w.now().Sub(startTime).Milliseconds())
	logger.LogEvent("SCAN", true, elapsed, fmt.Sprintf("%s | %d Yang | %s", rec.Name, rec.Price, rec.Category))
	return nil
}

// gateOpen 进程检测，结果缓存 5 秒
func (w *Worker) gateOpen(cfg *config.ScannerConfig) bool {
	if w.deps.Gate == nil || cfg.ProcessFilter == "" {
		return true
	}
	now := w.now()
	if now.Sub(w.gateChecked) < processGateTTL {
		return w.gateResult
	}
	w.gateResult = w.deps.Gate.Present(cfg.ProcessFilter)
	w.gateChecked = now
	if !w.gateResult {
		logger.Debug("未检测到游戏进程: %s", cfg.ProcessFilter)
	}
	return w.gateResult
}

// relevant 相关性过滤
// 命中任一配置关键词（大小写不敏感的子串）或固定类型规则即通过
func (w *Worker) relevant(cfg *config.ScannerConfig, name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range cfg.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	switch Classify(name) {
	case CategoryBook, CategoryScroll, CategorySoulstone4:
		return true
	}
	return false
}

// onFailure 记录失败并在连续失败过多时发布降级告警
func (w *Worker) onFailure(err error) {
	w.consecutiveFailures++
	logger.LogEvent("SCAN", false, 0, err.Error())
	if w.deps.Backoff.MaxConsecutive > 0 && w.consecutiveFailures == w.deps.Backoff.MaxConsecutive {
		w.bus.emit(Event{
			Kind:      EventHealth,
			Timestamp: w.now(),
			Detail:    fmt.Sprintf("连续 %d 帧失败，扫描可能已降级", w.consecutiveFailures),
		})
	}
}

// sleep 可被 ctx 取消的休眠
func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
