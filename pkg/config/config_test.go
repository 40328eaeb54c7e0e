package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultScannerConfig(t *testing.T) {
	cfg := DefaultScannerConfig()

	if cfg.FPS != 4.0 {
		t.Errorf("默认 FPS 应为 4.0, 实际为 %v", cfg.FPS)
	}
	if cfg.ROIWidth != 520 || cfg.ROIHeight != 300 {
		t.Errorf("默认 ROI 应为 520x300, 实际为 %dx%d", cfg.ROIWidth, cfg.ROIHeight)
	}
	if cfg.MarginX != 30 || cfg.MarginY != 30 {
		t.Errorf("默认边距应为 30/30, 实际为 %d/%d", cfg.MarginX, cfg.MarginY)
	}
	if cfg.DedupSeconds != 2.0 {
		t.Errorf("默认去重窗口应为 2.0s, 实际为 %v", cfg.DedupSeconds)
	}
	if cfg.Language != "pol+eng" {
		t.Errorf("默认语言应为 pol+eng, 实际为 %s", cfg.Language)
	}
	if cfg.OCREngine != "tesseract" {
		t.Errorf("默认 OCR 引擎应为 tesseract, 实际为 %s", cfg.OCREngine)
	}
	if !cfg.AutoUpdateOnStart {
		t.Error("默认应启用启动时自动更新")
	}

	t.Logf("默认配置: %+v", cfg)
}

func TestNormalize(t *testing.T) {
	cfg := &ScannerConfig{FPS: 0.1, ROIWidth: -1, ROIHeight: 0, MarginX: -5, DedupSeconds: -1}
	cfg.Normalize()

	if cfg.FPS != 0.5 {
		t.Errorf("FPS 下限应为 0.5, 实际为 %v", cfg.FPS)
	}
	if cfg.ROIWidth != 520 || cfg.ROIHeight != 300 {
		t.Errorf("非法 ROI 应回退默认值, 实际为 %dx%d", cfg.ROIWidth, cfg.ROIHeight)
	}
	if cfg.MarginX != 0 {
		t.Errorf("负边距应归零, 实际为 %d", cfg.MarginX)
	}
	if cfg.DedupSeconds != 0 {
		t.Errorf("负去重窗口应归零, 实际为 %v", cfg.DedupSeconds)
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	cfg := DefaultScannerConfig()
	cfg.FPS = 2.0
	cfg.Keywords = []string{"księga", "pergamin"}
	cfg.UpdateVersionURL = "https://example.com/version.json"

	if err := manager.Save(cfg); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if loaded.FPS != cfg.FPS {
		t.Errorf("FPS 不匹配: 期望 %v, 实际 %v", cfg.FPS, loaded.FPS)
	}
	if len(loaded.Keywords) != 2 || loaded.Keywords[0] != "księga" {
		t.Errorf("Keywords 不匹配: %v", loaded.Keywords)
	}
	if loaded.UpdateVersionURL != cfg.UpdateVersionURL {
		t.Errorf("UpdateVersionURL 不匹配: %s", loaded.UpdateVersionURL)
	}

	t.Logf("加载的配置: %+v", loaded)
}

func TestManagerLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}

	if cfg.FPS != DefaultScannerConfig().FPS {
		t.Error("应返回默认配置")
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	configFile := filepath.Join(tempDir, "config.json")
	if err := os.WriteFile(configFile, []byte("not valid json"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	cfg, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if cfg == nil {
		t.Error("即使出错也应返回默认配置")
	}

	t.Logf("加载损坏配置的错误: %v", err)
}

func TestManagerClear(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if err := manager.Save(DefaultScannerConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}

	// 清除不存在的文件不应报错
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestStoreSnapshotSwap(t *testing.T) {
	store := NewStore(DefaultScannerConfig())

	snap1 := store.Snapshot()
	if snap1.FPS != 4.0 {
		t.Errorf("初始快照 FPS 应为 4.0, 实际为 %v", snap1.FPS)
	}

	// 替换快照后，旧快照不受影响
	next := DefaultScannerConfig()
	next.FPS = 1.0
	next.Keywords = []string{"miecz"}
	store.Swap(next)

	// 写入方修改原对象不应影响已存入的快照
	next.Keywords[0] = "zmieniono"

	snap2 := store.Snapshot()
	if snap2.FPS != 1.0 {
		t.Errorf("新快照 FPS 应为 1.0, 实际为 %v", snap2.FPS)
	}
	if snap2.Keywords[0] != "miecz" {
		t.Errorf("快照应为深拷贝, 实际 Keywords=%v", snap2.Keywords)
	}
	if snap1.FPS != 4.0 {
		t.Error("旧快照被意外修改")
	}
}

func TestStoreSwapNil(t *testing.T) {
	store := NewStore(nil)
	if store.Snapshot() == nil {
		t.Fatal("nil 配置应回退为默认配置")
	}
	if store.Snapshot().FPS != 4.0 {
		t.Error("回退配置应为默认值")
	}
}
