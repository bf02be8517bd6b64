//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"surface-inspector/internal/domain/entity"
)

// Столбцы матрицы stats у ConnectedComponentsWithStats.
const (
	ccLeft = iota
	ccTop
	ccWidth
	ccHeight
	ccArea
)

// GoCVEnabled сообщает, собран ли бинарник с OpenCV.
const GoCVEnabled = true

// GoCVPipeline выполняет подготовку и поиск границ средствами OpenCV.
type GoCVPipeline struct {
	prep PreprocessOptions
	edge EdgeOptions
}

// NewGoCVPipeline создаёт конвейер на OpenCV.
func NewGoCVPipeline(prep PreprocessOptions, edge EdgeOptions) *GoCVPipeline {
	if edge.MinComponentArea < 1 {
		edge.MinComponentArea = 1
	}
	return &GoCVPipeline{prep: prep, edge: edge}
}

// Preprocess декодирует, уменьшает, переводит в серый и применяет CLAHE.
func (p *GoCVPipeline) Preprocess(imageData []byte) (*entity.AnalysisImage, error) {
	mat, err := decodeToMat(imageData, p.prep.MaxPixels)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	srcW, srcH := mat.Cols(), mat.Rows()
	w, h := FitWithin(srcW, srcH, p.prep.MaxDimension)
	if w != srcW || h != srcH {
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	tiles := maxInt(1, p.prep.TileGrid)
	clahe := gocv.NewCLAHEWithParams(p.prep.ClipLimit, image.Pt(tiles, tiles))
	defer clahe.Close()

	equalized := gocv.NewMat()
	defer equalized.Close()
	clahe.Apply(gray, &equalized)

	img, err := equalized.ToImage()
	if err != nil {
		return nil, entity.Wrap(entity.KindInternal, "vision.gocv.preprocess", "failed to convert mat", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		g = toGray(img)
	}
	return &entity.AnalysisImage{Gray: g, SourceWidth: srcW, SourceHeight: srcH}, nil
}

// Detect считает Собель, порог Оцу и связные области через OpenCV.
func (p *GoCVPipeline) Detect(img *entity.AnalysisImage) (entity.EdgeMetrics, error) {
	if img == nil || img.Gray == nil {
		return entity.EdgeMetrics{}, entity.NewError(entity.KindInternal, "vision.gocv.detect", "analysis image is nil")
	}
	src, err := gocv.ImageGrayToMatGray(img.Gray)
	if err != nil {
		return entity.EdgeMetrics{}, entity.Wrap(entity.KindInternal, "vision.gocv.detect", "failed to convert image", err)
	}
	defer src.Close()

	gx := gocv.NewMat()
	defer gx.Close()
	gocv.Sobel(src, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderReflect101)

	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(src, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderReflect101)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	_, peak, _, _ := gocv.MinMaxLoc(mag)
	if peak <= 0 {
		return entity.EdgeMetrics{}, nil
	}

	norm := gocv.NewMat()
	defer norm.Close()
	mag.ConvertToWithParams(&norm, gocv.MatTypeCV8U, 255/peak, 0)

	mask := gocv.NewMat()
	defer mask.Close()
	t := gocv.Threshold(norm, &mask, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	total := mask.Cols() * mask.Rows()
	fg := gocv.CountNonZero(mask)

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()
	n := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	regions := make([]entity.DefectArea, 0, n)
	// Метка 0 это фон.
	for i := 1; i < n; i++ {
		area := int(stats.GetIntAt(i, ccArea))
		if area < p.edge.MinComponentArea {
			continue
		}
		regions = append(regions, entity.DefectArea{
			X:      int(stats.GetIntAt(i, ccLeft)),
			Y:      int(stats.GetIntAt(i, ccTop)),
			Width:  int(stats.GetIntAt(i, ccWidth)),
			Height: int(stats.GetIntAt(i, ccHeight)),
			Area:   area,
		})
	}

	return entity.EdgeMetrics{
		EdgePixelRatio: float64(fg) / float64(total),
		DefectCount:    len(regions),
		Threshold:      uint8(t),
		Regions:        regions,
	}, nil
}

// decodeToMat превращает байты изображения в gocv.Mat после проверки размера по заголовку.
func decodeToMat(imageData []byte, maxPixels int) (gocv.Mat, error) {
	if err := checkPixelBudget(imageData, maxPixels); err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	if err != nil {
		return gocv.NewMat(), entity.Wrap(entity.KindDecode, "vision.gocv.decode", "failed to decode image", err)
	}
	return gocv.NewMat(), entity.NewError(entity.KindDecode, "vision.gocv.decode", "failed to decode image")
}
