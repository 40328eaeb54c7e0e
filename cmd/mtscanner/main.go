package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/mtscan/mtscanner/internal/logger"
	"github.com/mtscan/mtscanner/pkg/config"
	"github.com/mtscan/mtscanner/pkg/marketlog"
	"github.com/mtscan/mtscanner/pkg/permissions"
	"github.com/mtscan/mtscanner/pkg/process"
	"github.com/mtscan/mtscanner/pkg/scanner"
	"github.com/mtscan/mtscanner/pkg/screen"
	"github.com/mtscan/mtscanner/pkg/updater"
	"github.com/mtscan/mtscanner/pkg/vision/cv"
	"github.com/mtscan/mtscanner/pkg/vision/ocr"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.2"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		fps         = flag.Float64("fps", 0, "扫描帧率 (0 表示使用配置文件)")
		keywords    = flag.String("keywords", "", "关键词过滤，逗号分隔")
		logDir      = flag.String("log-dir", "", "记录输出目录")
		engine      = flag.String("engine", "", "OCR 引擎 (tesseract|paddle)")
		previewDir  = flag.String("preview-dir", "", "预处理帧的预览输出目录")
		checkUpdate = flag.Bool("check-update", false, "只执行更新检查后退出")
		saveConfig  = flag.Bool("save", false, "保存配置到本地")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}

	// 命令行参数优先级高于配置文件
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *keywords != "" {
		cfg.Keywords = splitKeywords(*keywords)
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
	if *engine != "" {
		cfg.OCREngine = *engine
	}
	cfg = cfg.Normalize()

	// 保存配置
	if *saveConfig {
		if err := config.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", config.GetDefaultManager().GetConfigFile())
		}
	}

	// 初始化日志
	logger.Default().SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		fmt.Printf("[WARN] 创建记录目录失败: %v\n", err)
	}
	logPath := filepath.Join(cfg.LogDir, "mtscanner.log")
	if err := logger.Default().SetFile(true, logPath); err != nil {
		fmt.Printf("[WARN] 打开日志文件失败: %v\n", err)
	}
	defer logger.Default().Close()

	// 打印启动信息
	fmt.Println("========================================")
	fmt.Printf("  MT Market Scanner v%s\n", Version)
	fmt.Println("========================================")
	fmt.Printf("帧率: %.1f | ROI: %dx%d | 引擎: %s\n", cfg.FPS, cfg.ROIWidth, cfg.ROIHeight, cfg.OCREngine)
	fmt.Printf("记录目录: %s\n", cfg.LogDir)
	fmt.Println()

	// 更新检查
	if *checkUpdate || (cfg.AutoUpdateOnStart && cfg.UpdateVersionURL != "") {
		if cfg.UpdateVersionURL == "" {
			fmt.Println("[WARN] 未配置 update_version_url，跳过更新检查")
		} else {
			outcome := runUpdate(cfg.UpdateVersionURL)
			fmt.Printf("[UPDATE] %s\n", outcome.Message)
			if outcome.Updated {
				// 二进制已被替换，必须重启
				return
			}
		}
		if *checkUpdate {
			return
		}
	}

	// macOS 权限检查
	if runtime.GOOS == "darwin" {
		if ok, instructions := permissions.EnsurePermissions(); !ok {
			fmt.Println("[WARN] ========== 缺少权限 ==========")
			fmt.Println(instructions)
			fmt.Println("[WARN] ==================================")
		}
	}

	// 组装扫描流水线
	store := config.NewStore(cfg)

	csvStore, err := marketlog.NewStore(cfg.LogDir)
	if err != nil {
		fmt.Printf("[ERROR] 初始化 CSV 存储失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[INFO] CSV 记录: %s\n", csvStore.Path())

	history, err := marketlog.OpenHistory(cfg.LogDir)
	if err != nil {
		fmt.Printf("[WARN] 打开历史库失败: %v\n", err)
		history = nil
	} else {
		defer history.Close()
	}

	recognizer, err := ocr.NewTextRecognizer(ocr.Config{
		Engine:   cfg.OCREngine,
		Language: cfg.Language,
		Paddle:   ocr.DefaultPaddleConfig(),
	})
	if err != nil {
		fmt.Printf("[ERROR] 初始化 OCR 引擎失败: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	deps := scanner.Deps{
		Config:     store,
		Capturer:   screen.NewCapturer(),
		Preprocess: cv.PreprocessImage,
		OCR:        recognizer,
		Sink:       csvStore,
		Gate:       process.NewGate(),
	}
	if history != nil {
		deps.History = history
	}

	worker := scanner.NewWorker(deps)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(runDone)
	}()
	go consumeEvents(worker, *previewDir)

	worker.Start()
	fmt.Println("[INFO] 扫描中，将鼠标悬停在商店物品上...")
	fmt.Println("[INFO] 按 Ctrl+C 退出")

	// 等待中断信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println()
	fmt.Println("[INFO] 正在停止扫描...")
	worker.Stop()
	cancel()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		fmt.Println("[WARN] 扫描循环未在 1 秒内退出")
	}

	printSummary(history)
	fmt.Println("[INFO] 已退出")
}

// runUpdate 执行更新流程
func runUpdate(versionURL string) updater.Outcome {
	appDir, err := os.Executable()
	if err != nil {
		appDir = "."
	} else {
		appDir = filepath.Dir(appDir)
	}

	fmt.Println("[INFO] 正在检查更新...")
	return updater.New(Version).CheckAndUpdate(context.Background(), versionURL, appDir)
}

// consumeEvents 消费扫描事件并打印记录
func consumeEvents(worker *scanner.Worker, previewDir string) {
	for ev := range worker.Events() {
		switch ev.Kind {
		case scanner.EventRecord:
			rec := ev.Record
			unit := ""
			if rec.UnitPrice != nil {
				unit = fmt.Sprintf(" (za sztukę: %d)", *rec.UnitPrice)
			}
			fmt.Printf("[LOG] %s | %d Yang%s | %s\n", rec.Name, rec.Price, unit, rec.Category)
		case scanner.EventHealth:
			fmt.Printf("[WARN] %s\n", ev.Detail)
		case scanner.EventState:
			logger.Info("运行状态: %v", ev.Running)
		case scanner.EventFrame:
			if previewDir != "" && ev.Frame != nil {
				path := filepath.Join(previewDir, "preview.png")
				if err := screen.SavePNG(path, ev.Frame); err != nil {
					logger.Warn("保存预览帧失败: %v", err)
				}
			}
		}
	}
}

// printSummary 打印会话汇总
func printSummary(history *marketlog.History) {
	if history == nil {
		return
	}
	counts, err := history.CountByCategory()
	if err != nil || len(counts) == 0 {
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("本次会话共记录 %d 条:\n", total)
	for _, cat := range []scanner.Category{
		scanner.CategoryBook, scanner.CategoryScroll,
		scanner.CategorySoulstone4, scanner.CategoryUpgrade, scanner.CategoryOther,
	} {
		if counts[cat] > 0 {
			fmt.Printf("  %-12s %d\n", cat, counts[cat])
		}
	}
	fmt.Println("----------------------------------------")
}

// splitKeywords 拆分逗号分隔的关键词
func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("MT Market Scanner v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("MT Market Scanner - 市场商店扫描记录工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  mtscanner [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -fps float          扫描帧率 (默认使用配置文件)")
	fmt.Println("  -keywords string    关键词过滤，逗号分隔")
	fmt.Println("  -log-dir string     记录输出目录")
	fmt.Println("  -engine string      OCR 引擎 (tesseract|paddle)")
	fmt.Println("  -preview-dir string 预处理帧的预览输出目录")
	fmt.Println("  -check-update       只执行更新检查后退出")
	fmt.Println("  -save               保存配置到本地")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 使用默认配置扫描")
	fmt.Println("  mtscanner")
	fmt.Println()
	fmt.Println("  # 只记录含指定关键词的商品")
	fmt.Println("  mtscanner -keywords \"pergamin,ulepszacz\" -save")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
