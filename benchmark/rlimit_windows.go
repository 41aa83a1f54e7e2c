//go:build windows
// +build windows

package benchmark

// SetMaxResources is a no-op on Windows, which has no per-process open
// file limit to raise.
func SetMaxResources() error {
	return nil
}
