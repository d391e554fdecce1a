//go:build linux

package ccfeatures

import "golang.org/x/sys/unix"

// HostKernel returns the kernel release string (e.g., "6.1.0-generic"),
// or the empty string when it cannot be determined.
func HostKernel() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uname.Release[:])
}
