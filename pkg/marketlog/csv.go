// Package marketlog 负责市场记录的持久化: CSV 日志与 SQLite 历史库
package marketlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mtscan/mtscanner/internal/logger"
	"github.com/mtscan/mtscanner/pkg/scanner"
)

// csvFileName 固定的 CSV 文件名
const csvFileName = "market_log.csv"

// timestampLayout CSV 时间戳格式，本地时区
const timestampLayout = "2006-01-02 15:04:05"

// csvHeader CSV 表头
var csvHeader = []string{"timestamp", "item_name", "price", "unit_price", "category", "raw_text"}

// Store CSV 追加存储
// 文件不存在时创建并写入表头
type Store struct {
	path string
}

// NewStore 创建 CSV 存储，目录不存在时创建
func NewStore(logDir string) (*Store, error) {
	absDir, err := filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("解析日志目录失败: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	s := &Store{path: filepath.Join(absDir, csvFileName)}
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path 返回 CSV 文件路径
func (s *Store) Path() string {
	return s.path
}

// ensureHeader 文件不存在时创建并写入表头
func (s *Store) ensureHeader() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("创建 CSV 文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("写入 CSV 表头失败: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Append 追加一条记录
func (s *Store) Append(rec scanner.Record) error {
	startTime := time.Now()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开 CSV 文件失败: %w", err)
	}
	defer f.Close()

	unitPrice := ""
	if rec.UnitPrice != nil {
		unitPrice = strconv.Itoa(*rec.UnitPrice)
	}

	w := csv.NewWriter(f)
	row := []string{
		rec.Timestamp.Local().Format(timestampLayout),
		rec.Name,
		strconv.Itoa(rec.Price),
		unitPrice,
		string(rec.Category),
		rec.RawText,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("写入 CSV 行失败: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("刷新 CSV 失败: %w", err)
	}

	elapsed := float64(time.Since(startTime).Milliseconds())
	logger.LogEvent("LOG", true, elapsed, rec.Name)
	return nil
}

// ReadAll 读取全部记录（不含表头），用于测试与会话汇总
func (s *Store) ReadAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("打开 CSV 文件失败: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("读取 CSV 失败: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}
