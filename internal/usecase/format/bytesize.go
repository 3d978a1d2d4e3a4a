package format

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// ByteSize renders n using the largest unit that keeps the value at or above
// one: GB with two decimals, MB with one, kB floored to an integer, and bytes
// as-is. A value that rounds up to 1024 MB is shown in GB.
func ByteSize(n int64) string {
	mb := fmt.Sprintf("%.1f", float64(n)/mib)
	switch {
	case n >= gib || mb == "1024.0":
		return fmt.Sprintf("%.2f GB", float64(n)/gib)
	case n >= mib:
		return mb + " MB"
	case n >= kib:
		return fmt.Sprintf("%d kB", n/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// SizeDelta renders a signed byte delta, e.g. "(+120 bytes)" or "(-100 bytes)".
func SizeDelta(delta int64) string {
	return fmt.Sprintf("(%+d bytes)", delta)
}
