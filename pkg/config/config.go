// Package config 提供扫描器配置的加载、保存与运行时快照
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// ScannerConfig 扫描器配置
// 字段与磁盘上的 config.json 一一对应
type ScannerConfig struct {
	// FPS 目标采集帧率，下限 0.5
	FPS float64 `json:"fps"`
	// ROIWidth / ROIHeight 采集区域尺寸（像素）
	ROIWidth  int `json:"roi_width"`
	ROIHeight int `json:"roi_height"`
	// MarginX / MarginY 采集区域相对鼠标指针的偏移（像素）
	MarginX int `json:"margin_x"`
	MarginY int `json:"margin_y"`
	// DedupSeconds 去重时间窗口（秒）
	DedupSeconds float64 `json:"dedup_seconds"`
	// Language OCR 语言提示，例如 "pol+eng"
	Language string `json:"language"`
	// Keywords 相关性过滤关键词（子串匹配，不区分大小写）
	Keywords []string `json:"keywords"`
	// LogDir 市场日志目录
	LogDir string `json:"log_dir"`
	// OCREngine OCR 引擎: "tesseract" 或 "paddle"
	OCREngine string `json:"ocr_engine"`
	// ProcessFilter 游戏客户端进程名过滤；为空则不检测
	ProcessFilter string `json:"process_filter"`
	// UpdateVersionURL 远程 version.json 地址
	UpdateVersionURL string `json:"update_version_url"`
	// AutoUpdateOnStart 启动时自动检查更新
	AutoUpdateOnStart bool `json:"auto_update_on_start"`
	// LogLevel 日志级别 (DEBUG/INFO/WARN/ERROR)
	LogLevel string `json:"log_level"`
}

// DefaultScannerConfig 默认扫描器配置
func DefaultScannerConfig() *ScannerConfig {
	return &ScannerConfig{
		FPS:               4.0,
		ROIWidth:          520,
		ROIHeight:         300,
		MarginX:           30,
		MarginY:           30,
		DedupSeconds:      2.0,
		Language:          "pol+eng",
		Keywords:          []string{},
		LogDir:            "./logs_market",
		OCREngine:         "tesseract",
		ProcessFilter:     "",
		UpdateVersionURL:  "",
		AutoUpdateOnStart: true,
		LogLevel:          "INFO",
	}
}

// Normalize 修正越界的配置值，返回配置自身方便链式调用
func (c *ScannerConfig) Normalize() *ScannerConfig {
	if c.FPS < 0.5 {
		c.FPS = 0.5
	}
	if c.ROIWidth <= 0 {
		c.ROIWidth = 520
	}
	if c.ROIHeight <= 0 {
		c.ROIHeight = 300
	}
	if c.MarginX < 0 {
		c.MarginX = 0
	}
	if c.MarginY < 0 {
		c.MarginY = 0
	}
	if c.DedupSeconds < 0 {
		c.DedupSeconds = 0
	}
	if c.Language == "" {
		c.Language = "pol+eng"
	}
	if c.LogDir == "" {
		c.LogDir = "./logs_market"
	}
	if c.OCREngine == "" {
		c.OCREngine = "tesseract"
	}
	return c
}

// Clone 返回配置的深拷贝
func (c *ScannerConfig) Clone() *ScannerConfig {
	cp := *c
	cp.Keywords = append([]string(nil), c.Keywords...)
	return &cp
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置文件位于当前工作目录
func NewManager() *Manager {
	return NewManagerWithDir(".")
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置；文件不存在时返回默认配置
func (m *Manager) Load() (*ScannerConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultScannerConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultScannerConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := DefaultScannerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultScannerConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	return cfg.Normalize(), nil
}

// Save 保存配置
func (m *Manager) Save(cfg *ScannerConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// Store 持有当前生效的配置快照
// 写入方（界面保存设置）整体替换指针，工作协程每次迭代读取一次快照，
// 不存在跨协程的部分更新
type Store struct {
	ptr atomic.Pointer[ScannerConfig]
}

// NewStore 创建配置快照存储
func NewStore(cfg *ScannerConfig) *Store {
	s := &Store{}
	s.Swap(cfg)
	return s
}

// Snapshot 返回当前配置快照；调用方不得修改返回值
func (s *Store) Snapshot() *ScannerConfig {
	return s.ptr.Load()
}

// Swap 原子替换配置快照
func (s *Store) Swap(cfg *ScannerConfig) {
	if cfg == nil {
		cfg = DefaultScannerConfig()
	}
	s.ptr.Store(cfg.Clone().Normalize())
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*ScannerConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(cfg *ScannerConfig) error {
	return defaultManager.Save(cfg)
}
