package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// 预处理参数
// 放大倍率与滤波/阈值参数按游戏内交易气泡的字号标定
const (
	// UpscaleFactor OCR 前的放大倍率
	UpscaleFactor = 1.8
	// bilateralDiameter 双边滤波像素邻域直径
	bilateralDiameter = 7
	// bilateralSigma 双边滤波颜色/空间 sigma
	bilateralSigma = 60
	// thresholdBlockSize 自适应阈值窗口（奇数）
	thresholdBlockSize = 35
	// thresholdBias 自适应阈值偏置
	thresholdBias = 10
)

// PreprocessForOCR 对采集区域做 OCR 预处理
// 步骤固定: 灰度化 -> 直方图均衡 -> 1.8 倍三次插值放大 -> 双边滤波去噪 -> 自适应高斯阈值二值化
// 返回单通道二值图，调用方负责 Close
func PreprocessForOCR(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("输入图像为空")
	}

	gray := ToGray(src)
	defer gray.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	gocv.EqualizeHist(gray, &equalized)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(equalized, &scaled, image.Point{}, UpscaleFactor, UpscaleFactor, gocv.InterpolationCubic)

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(scaled, &smoothed, bilateralDiameter, bilateralSigma, bilateralSigma)

	binary := gocv.NewMat()
	gocv.AdaptiveThreshold(smoothed, &binary, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, thresholdBlockSize, thresholdBias)

	return binary, nil
}

// PreprocessImage 对 image.Image 做 OCR 预处理
// 工作协程使用该入口，内部转换为 Mat 处理后转回
func PreprocessImage(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("输入图像为空")
	}

	mat, err := ImageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	binary, err := PreprocessForOCR(mat)
	if err != nil {
		return nil, err
	}
	defer binary.Close()

	return MatToImage(binary)
}
