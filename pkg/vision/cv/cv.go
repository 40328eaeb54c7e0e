// Package cv 提供 OCR 前的图像预处理功能
//
// 基本用法:
//
//	// 对采集到的区域做二值化预处理
//	bin, err := cv.PreprocessImage(img)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// bin 为单通道黑白图，可直接送入 OCR 引擎
package cv
