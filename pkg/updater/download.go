package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// download 下载升级包
func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	data, err := u.get(ctx, url, downloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("下载升级包失败: %w", err)
	}
	return data, nil
}

// verifyDigest 比对下载内容的 SHA256，十六进制不区分大小写
func verifyDigest(data []byte, expected string) bool {
	sum := sha256.Sum256(data)
	return strings.EqualFold(hex.EncodeToString(sum[:]), strings.TrimSpace(expected))
}
