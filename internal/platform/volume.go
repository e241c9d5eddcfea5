package platform

// volumeStepFraction is volumeStep as a fraction of full scale
const volumeStepFraction = 0.05

// stepVolume moves a 0..1 level by delta, clamped to the valid range
func stepVolume(level, delta float32) float32 {
	level += delta
	switch {
	case level < 0:
		return 0
	case level > 1:
		return 1
	}
	return level
}
