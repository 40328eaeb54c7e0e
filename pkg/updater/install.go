package updater

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// install 解压升级包并覆盖安装到 appDir
// 先整体解压到临时目录，逐文件写入 .tmp 后 Rename 覆盖，
// 避免覆盖到一半的文件以正式名字存在
func install(zipData []byte, appDir string) error {
	staging, err := os.MkdirTemp("", "mtupd_")
	if err != nil {
		return fmt.Errorf("创建临时目录失败: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extractZip(zipData, staging); err != nil {
		return err
	}
	return overlay(staging, appDir)
}

// extractZip 解压 zip 到目标目录，拒绝越界路径
func extractZip(zipData []byte, dst string) error {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return fmt.Errorf("解析升级包失败: %w", err)
	}

	for _, file := range reader.File {
		target := filepath.Join(dst, file.Name)
		if !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
			return fmt.Errorf("升级包包含非法路径: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("创建目录失败: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile 解压单个文件
func extractFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("读取升级包条目失败: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode().Perm()|0200)
	if err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

// overlay 将 staging 中的文件逐个覆盖到 appDir
// 每个文件先写到 <目标>.tmp 再 Rename，同卷下 Rename 是原子的
func overlay(staging, appDir string) error {
	return filepath.Walk(staging, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(staging, path)
		if err != nil {
			return err
		}
		target := filepath.Join(appDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}

		tmp := target + ".tmp"
		if err := copyFile(path, tmp, info.Mode().Perm()); err != nil {
			return err
		}
		if err := os.Rename(tmp, target); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("替换文件失败: %w", err)
		}
		return nil
	})
}

// copyFile 复制文件内容与权限
func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0200)
	if err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return out.Sync()
}
