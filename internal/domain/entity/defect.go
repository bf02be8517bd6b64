package entity

// DefectArea представляет связную область карты границ, пережившую фильтр площади.
type DefectArea struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина ограничивающей рамки в пикселях
	Height int // высота ограничивающей рамки в пикселях
	Area   int // число пикселей области
}

// Center возвращает координаты центра дефекта
func (d DefectArea) Center() (x, y int) {
	return d.X + d.Width/2, d.Y + d.Height/2
}

// Scale переводит область в координаты изображения другого размера.
func (d DefectArea) Scale(sx, sy float64) DefectArea {
	return DefectArea{
		X:      int(float64(d.X) * sx),
		Y:      int(float64(d.Y) * sy),
		Width:  maxInt(1, int(float64(d.Width)*sx+0.5)),
		Height: maxInt(1, int(float64(d.Height)*sy+0.5)),
		Area:   int(float64(d.Area)*sx*sy + 0.5),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
