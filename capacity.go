package stegtext

// CapacityBits returns how many bits an image of the given dimensions can
// carry when channelsPerPixel channel bytes per pixel are traversed.
func CapacityBits(width, height, channelsPerPixel int) int64 {
	if width <= 0 || height <= 0 || channelsPerPixel <= 0 {
		return 0
	}
	return int64(width) * int64(height) * int64(channelsPerPixel)
}

// CheckCapacity fails with *CapacityExceededError when requiredBits exceeds capacityBits.
// It must pass before any pixel is written.
func CheckCapacity(capacityBits, requiredBits int64) error {
	if requiredBits > capacityBits {
		return &CapacityExceededError{RequiredBits: requiredBits, CapacityBits: capacityBits}
	}
	return nil
}
