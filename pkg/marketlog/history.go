package marketlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mtscan/mtscanner/pkg/scanner"
)

// historyFileName 固定的历史库文件名
const historyFileName = "history.db"

// History SQLite 会话历史库
// 与 CSV 并行写入，供会话汇总与近期记录查询
type History struct {
	db *sql.DB
}

// OpenHistory 打开或创建历史库
func OpenHistory(logDir string) (*History, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	dbPath := filepath.Join(logDir, historyFileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开历史库失败: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			logged_at TEXT NOT NULL,
			item_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			unit_price INTEGER,
			category TEXT NOT NULL,
			raw_text TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化历史库结构失败: %w", err)
	}

	return &History{db: db}, nil
}

// Append 插入一条记录
func (h *History) Append(rec scanner.Record) error {
	var unitPrice sql.NullInt64
	if rec.UnitPrice != nil {
		unitPrice = sql.NullInt64{Int64: int64(*rec.UnitPrice), Valid: true}
	}

	_, err := h.db.Exec(
		`INSERT INTO records (logged_at, item_name, price, unit_price, category, raw_text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Local().Format(timestampLayout),
		rec.Name, rec.Price, unitPrice, string(rec.Category), rec.RawText,
	)
	if err != nil {
		return fmt.Errorf("写入历史库失败: %w", err)
	}
	return nil
}

// Recent 返回最近 n 条记录，按时间倒序
func (h *History) Recent(n int) ([]scanner.Record, error) {
	rows, err := h.db.Query(
		`SELECT logged_at, item_name, price, unit_price, category, raw_text
		 FROM records ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("查询历史库失败: %w", err)
	}
	defer rows.Close()

	var records []scanner.Record
	for rows.Next() {
		var (
			loggedAt  string
			rec       scanner.Record
			unitPrice sql.NullInt64
			category  string
		)
		if err := rows.Scan(&loggedAt, &rec.Name, &rec.Price, &unitPrice, &category, &rec.RawText); err != nil {
			return nil, fmt.Errorf("读取历史记录失败: %w", err)
		}
		if ts, err := time.ParseInLocation(timestampLayout, loggedAt, time.Local); err == nil {
			rec.Timestamp = ts
		}
		if unitPrice.Valid {
			v := int(unitPrice.Int64)
			rec.UnitPrice = &v
		}
		rec.Category = scanner.Category(category)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByCategory 按分类统计记录数
func (h *History) CountByCategory() (map[scanner.Category]int, error) {
	rows, err := h.db.Query(`SELECT category, COUNT(*) FROM records GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("统计历史库失败: %w", err)
	}
	defer rows.Close()

	counts := make(map[scanner.Category]int)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("读取统计结果失败: %w", err)
		}
		counts[scanner.Category(category)] = count
	}
	return counts, rows.Err()
}

// Close 关闭历史库
func (h *History) Close() error {
	return h.db.Close()
}
