// Package updater 实现自更新: 拉取版本清单、校验下载、覆盖安装
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mtscan/mtscanner/internal/logger"
)

const (
	// userAgent 更新请求的 User-Agent
	userAgent = "MTScanner-Updater"
	// manifestTimeout 清单请求超时
	manifestTimeout = 20 * time.Second
	// downloadTimeout 升级包下载超时
	downloadTimeout = 60 * time.Second
)

// 面向用户的更新结果消息，与原版保持一致的波兰语措辞
const (
	msgNoNewerVersion = "Brak nowszej wersji."
	msgMissingURL     = "Brak URL do aktualizacji w version.json."
	msgDigestMismatch = "Nie zgadza się suma SHA256 pobranej paczki."
	msgDigestRequired = "Manifest nie zawiera sumy SHA256, a weryfikacja jest wymagana."
	msgUpdatedFormat  = "Zaktualizowano do %s. Uruchom ponownie aplikację."
	msgErrorFormat    = "Błąd aktualizacji: %v"
)

// Manifest 远端版本清单 version.json
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256"`
	Notes   string `json:"notes"`
}

// Outcome 更新流程的结果
// 任何失败都以 Message 报告，不向调用方抛出错误
type Outcome struct {
	Updated bool
	Current string
	Remote  string
	Message string
}

// Updater 自更新器
type Updater struct {
	// Current 当前版本号
	Current string
	// RequireDigest 为 true 时拒绝没有 SHA256 的清单
	RequireDigest bool

	client *http.Client
}

// New 创建更新器
func New(currentVersion string) *Updater {
	return &Updater{
		Current: currentVersion,
		client:  &http.Client{},
	}
}

// CheckAndUpdate 执行完整的更新流程
// 检查清单，有新版本时下载、校验并覆盖安装到 appDir
func (u *Updater) CheckAndUpdate(ctx context.Context, versionURL, appDir string) Outcome {
	outcome := Outcome{Current: u.Current}
	startTime := time.Now()

	manifest, err := u.fetchManifest(ctx, versionURL)
	if err != nil {
		outcome.Message = fmt.Sprintf(msgErrorFormat, err)
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}
	outcome.Remote = manifest.Version

	if compareVersions(manifest.Version, u.Current) <= 0 {
		outcome.Message = msgNoNewerVersion
		logger.LogEvent("UPD", true, elapsedMs(startTime), outcome.Message)
		return outcome
	}

	if manifest.URL == "" {
		outcome.Message = msgMissingURL
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}
	if u.RequireDigest && manifest.SHA256 == "" {
		outcome.Message = msgDigestRequired
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}

	data, err := u.download(ctx, manifest.URL)
	if err != nil {
		outcome.Message = fmt.Sprintf(msgErrorFormat, err)
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}

	if manifest.SHA256 != "" && !verifyDigest(data, manifest.SHA256) {
		outcome.Message = msgDigestMismatch
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}

	if err := install(data, appDir); err != nil {
		outcome.Message = fmt.Sprintf(msgErrorFormat, err)
		logger.LogEvent("UPD", false, elapsedMs(startTime), outcome.Message)
		return outcome
	}

	outcome.Updated = true
	outcome.Message = fmt.Sprintf(msgUpdatedFormat, manifest.Version)
	logger.LogEvent("UPD", true, elapsedMs(startTime), outcome.Message)
	return outcome
}

// fetchManifest 拉取并解析版本清单
func (u *Updater) fetchManifest(ctx context.Context, url string) (*Manifest, error) {
	body, err := u.get(ctx, url, manifestTimeout)
	if err != nil {
		return nil, fmt.Errorf("拉取版本清单失败: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("解析版本清单失败: %w", err)
	}
	if manifest.Version == "" {
		manifest.Version = "0.0.0"
	}
	return &manifest, nil
}

// get 带超时与 User-Agent 的 GET 请求
func (u *Updater) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
