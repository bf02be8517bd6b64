package vision

import "surface-inspector/internal/domain/entity"

var neighbours8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// FindComponents размечает 8-связные области маски в порядке обхода строк
// и оставляет области площадью не меньше minArea.
func FindComponents(mask []bool, w, h, minArea int) []entity.DefectArea {
	if w <= 0 || h <= 0 || len(mask) < w*h {
		return nil
	}
	visited := make([]bool, w*h)
	queue := make([]int, 0, 64)
	var regions []entity.DefectArea

	for start := 0; start < w*h; start++ {
		if !mask[start] || visited[start] {
			continue
		}
		visited[start] = true
		queue = append(queue[:0], start)

		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		area := 0
		for len(queue) > 0 {
			p := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			area++

			px, py := p%w, p/w
			minX, maxX = minInt(minX, px), maxInt(maxX, px)
			minY, maxY = minInt(minY, py), maxInt(maxY, py)

			for _, d := range neighbours8 {
				nx, ny := px+d[0], py+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if mask[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		if area >= minArea {
			regions = append(regions, entity.DefectArea{
				X:      minX,
				Y:      minY,
				Width:  maxX - minX + 1,
				Height: maxY - minY + 1,
				Area:   area,
			})
		}
	}
	return regions
}
