//go:build windows

package ccfeatures

const exeSuffix = ".exe"
