package util

// Delta returns curr - prev, or 0 if curr < prev (counter wrap or reset).
func Delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}

// Pct returns part as a percentage of whole, 0 when whole is 0.
func Pct(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
