//go:build !linux

package ccfeatures

// HostKernel returns the kernel release string.
// On non-Linux platforms it is always empty.
func HostKernel() string {
	return ""
}
