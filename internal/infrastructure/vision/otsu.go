package vision

// OtsuThreshold выбирает порог, максимизирующий межклассовую дисперсию.
// Передний план составляют значения строго больше порога.
// Второй результат false, если все значения одинаковы и разделять нечего.
func OtsuThreshold(values []uint8) (uint8, bool) {
	var hist [histBins]int
	for _, v := range values {
		hist[v]++
	}
	total := len(values)
	if total == 0 {
		return 0, false
	}

	distinct := 0
	sum := 0.0
	for i, c := range hist {
		if c > 0 {
			distinct++
		}
		sum += float64(i * c)
	}
	if distinct < 2 {
		return 0, false
	}

	var (
		best     uint8
		bestVar  = -1.0
		weightBg int
		sumBg    float64
	)
	for t := 0; t < histBins; t++ {
		weightBg += hist[t]
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}
		sumBg += float64(t * hist[t])
		meanBg := sumBg / float64(weightBg)
		meanFg := (sum - sumBg) / float64(weightFg)
		d := meanBg - meanFg
		between := float64(weightBg) * float64(weightFg) * d * d
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best, true
}

// Binarize строит маску value > t.
func Binarize(values []uint8, t uint8) []bool {
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v > t
	}
	return mask
}
