//go:build !windows

package console

// Alloc is a no-op on non-Windows platforms
func Alloc() error {
	return nil
}

// Init is a no-op on non-Windows platforms (macOS/Linux already support ANSI)
func Init() error {
	return nil
}
