package vision

import (
	"image"
	"math"
)

const histBins = 256

// EqualizeAdaptive выполняет CLAHE: гистограмма каждого тайла обрезается по clipLimit,
// избыток распределяется равномерно, таблицы соседних тайлов интерполируются билинейно.
// clipLimit <= 0 отключает обрезку.
func EqualizeAdaptive(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	if tiles < 1 {
		tiles = 1
	}
	tilesX, tilesY := minInt(tiles, w), minInt(tiles, h)

	luts := make([][histBins]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := ty*h/tilesY, (ty+1)*h/tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := tx*w/tilesX, (tx+1)*w/tilesX
			luts[ty*tilesX+tx] = tileLUT(src, image.Rect(x0, y0, x1, y1), clipLimit)
		}
	}

	tileW := float64(w) / float64(tilesX)
	tileH := float64(h) / float64(tilesY)

	for y := 0; y < h; y++ {
		ty1, ty2, ay := neighbours(y, tileH, tilesY)
		for x := 0; x < w; x++ {
			tx1, tx2, ax := neighbours(x, tileW, tilesX)
			v := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(x+b.Min.X-src.Rect.Min.X)]

			top := (1-ax)*float64(luts[ty1*tilesX+tx1][v]) + ax*float64(luts[ty1*tilesX+tx2][v])
			bottom := (1-ax)*float64(luts[ty2*tilesX+tx1][v]) + ax*float64(luts[ty2*tilesX+tx2][v])
			out := math.Round((1-ay)*top + ay*bottom)
			dst.Pix[y*dst.Stride+x] = uint8(math.Min(255, math.Max(0, out)))
		}
	}
	return dst
}

// neighbours возвращает два соседних тайла по оси и вес второго.
func neighbours(pos int, tileSize float64, count int) (int, int, float64) {
	g := (float64(pos)+0.5)/tileSize - 0.5
	first := int(math.Floor(g))
	weight := g - float64(first)
	second := first + 1
	if first < 0 {
		first, weight = 0, 0
	}
	if second > count-1 {
		second = count - 1
	}
	if first > count-1 {
		first = count - 1
	}
	return first, second, weight
}

// tileLUT строит таблицу выравнивания для одного тайла.
func tileLUT(src *image.Gray, r image.Rectangle, clipLimit float64) [histBins]uint8 {
	var hist [histBins]int
	b := src.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := (y + b.Min.Y - src.Rect.Min.Y) * src.Stride
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[src.Pix[row+x+b.Min.X-src.Rect.Min.X]]++
		}
	}

	n := r.Dx() * r.Dy()
	if clipLimit > 0 {
		clip := maxInt(1, int(clipLimit*float64(n)/histBins))
		excess := 0
		for i := range hist {
			if hist[i] > clip {
				excess += hist[i] - clip
				hist[i] = clip
			}
		}

		batch := excess / histBins
		residual := excess % histBins
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := maxInt(histBins/residual, 1)
			for i := 0; i < histBins && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [histBins]uint8
	scale := 255.0 / float64(n)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = uint8(math.Min(255, math.Round(float64(sum)*scale)))
	}
	return lut
}
