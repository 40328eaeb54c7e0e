package marketlog

import (
	"testing"
	"time"

	"github.com/mtscan/mtscanner/pkg/scanner"
)

func sampleRecord() scanner.Record {
	unit := 56
	return scanner.Record{
		Timestamp: time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local),
		Name:      "Pergamin wojownika",
		Price:     1234,
		UnitPrice: &unit,
		Category:  scanner.CategoryScroll,
		RawText:   "Pergamin wojownika\nCena: 1 234 Yang\nza sztukę: 56 Yang",
	}
}

func TestStoreCreatesHeader(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}

	rows, err := store.ReadAll()
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("新文件应只有表头, 实际 %d 行", len(rows))
	}
}

func TestStoreAppendRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}

	rec := sampleRecord()
	if err := store.Append(rec); err != nil {
		t.Fatalf("追加失败: %v", err)
	}

	rows, err := store.ReadAll()
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("应有 1 行, 实际 %d 行", len(rows))
	}

	row := rows[0]
	want := []string{"2025-03-14 15:09:26", "Pergamin wojownika", "1234", "56", "scroll", rec.RawText}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("第 %d 列 = %q, 期望 %q", i, row[i], want[i])
		}
	}
}

func TestStoreAppendNoUnitPrice(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}

	rec := sampleRecord()
	rec.UnitPrice = nil
	if err := store.Append(rec); err != nil {
		t.Fatalf("追加失败: %v", err)
	}

	rows, _ := store.ReadAll()
	if rows[0][3] != "" {
		t.Errorf("缺失单价应为空串, 实际 %q", rows[0][3])
	}
}

func TestStoreAppendPreservesExisting(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	store.Append(sampleRecord())

	// 重新打开同一目录，旧记录保留
	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	reopened.Append(sampleRecord())

	rows, _ := reopened.ReadAll()
	if len(rows) != 2 {
		t.Errorf("应有 2 行, 实际 %d 行", len(rows))
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	history, err := OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("打开历史库失败: %v", err)
	}
	defer history.Close()

	rec := sampleRecord()
	if err := history.Append(rec); err != nil {
		t.Fatalf("插入失败: %v", err)
	}

	records, err := history.Recent(1)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("应返回 1 条, 实际 %d 条", len(records))
	}

	got := records[0]
	if got.Name != rec.Name || got.Price != rec.Price || got.Category != rec.Category || got.RawText != rec.RawText {
		t.Errorf("记录字段不符: %+v", got)
	}
	if got.UnitPrice == nil || *got.UnitPrice != *rec.UnitPrice {
		t.Errorf("单价不符: %v", got.UnitPrice)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("时间戳不符: %v != %v", got.Timestamp, rec.Timestamp)
	}
}

func TestHistoryCountByCategory(t *testing.T) {
	history, err := OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("打开历史库失败: %v", err)
	}
	defer history.Close()

	names := map[string]scanner.Category{
		"Pergamin wojownika":  scanner.CategoryScroll,
		"Pergamin bohatera":   scanner.CategoryScroll,
		"Księga Umiejętności": scanner.CategoryBook,
		"Ulepszacz broni":     scanner.CategoryUpgrade,
	}
	for name, cat := range names {
		rec := sampleRecord()
		rec.Name = name
		rec.Category = cat
		rec.UnitPrice = nil
		if err := history.Append(rec); err != nil {
			t.Fatalf("插入失败: %v", err)
		}
	}

	counts, err := history.CountByCategory()
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if counts[scanner.CategoryScroll] != 2 {
		t.Errorf("scroll 计数 = %d, 期望 2", counts[scanner.CategoryScroll])
	}
	if counts[scanner.CategoryBook] != 1 {
		t.Errorf("book 计数 = %d, 期望 1", counts[scanner.CategoryBook])
	}
	if counts[scanner.CategoryUpgrade] != 1 {
		t.Errorf("upgrade 计数 = %d, 期望 1", counts[scanner.CategoryUpgrade])
	}
}

func TestHistoryRecentOrder(t *testing.T) {
	history, err := OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("打开历史库失败: %v", err)
	}
	defer history.Close()

	for _, name := range []string{"pierwszy", "drugi", "trzeci"} {
		rec := sampleRecord()
		rec.Name = name
		history.Append(rec)
	}

	records, err := history.Recent(2)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("应返回 2 条, 实际 %d 条", len(records))
	}
	if records[0].Name != "trzeci" || records[1].Name != "drugi" {
		t.Errorf("应按时间倒序: %s, %s", records[0].Name, records[1].Name)
	}
}
