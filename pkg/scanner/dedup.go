package scanner

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// maxDedupEntries 去重缓存的硬上限，超出时淘汰最旧条目
const maxDedupEntries = 1000

// Fingerprint 计算条目指纹: md5("name|price") 的十六进制
// 价格缺失时以 0 参与计算
func Fingerprint(name string, price *int) string {
	p := 0
	if price != nil {
		p = *price
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d", name, p)))
	return hex.EncodeToString(sum[:])
}

// dedupEntry 缓存条目，按插入时间有序
type dedupEntry struct {
	key  string
	seen time.Time
}

// Cache 时间窗口去重缓存
// 仅由工作协程访问，无需加锁
type Cache struct {
	window  time.Duration
	entries []dedupEntry
}

// NewCache 创建去重缓存
func NewCache(window time.Duration) *Cache {
	return &Cache{window: window}
}

// ShouldLog 判断指纹是否应落盘
// 窗口内已出现过返回 false，否则记录并返回 true
func (c *Cache) ShouldLog(key string, now time.Time) bool {
	c.evict(now)

	for _, e := range c.entries {
		if e.key == key {
			return false
		}
	}

	c.entries = append(c.entries, dedupEntry{key: key, seen: now})
	if len(c.entries) > maxDedupEntries {
		c.entries = c.entries[len(c.entries)-maxDedupEntries:]
	}
	return true
}

// Len 返回当前条目数
func (c *Cache) Len() int {
	return len(c.entries)
}

// evict 淘汰窗口外的旧条目，条目按时间有序，只需剥离前缀
func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.window)
	i := 0
	for i < len(c.entries) && c.entries[i].seen.Before(cutoff) {
		i++
	}
	if i > 0 {
		c.entries = c.entries[i:]
	}
}
