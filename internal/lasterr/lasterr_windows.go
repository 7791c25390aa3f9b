//go:build windows

package lasterr

import "golang.org/x/sys/windows"

func init() {
	fallback = func() string {
		if e := windows.GetLastError(); e != nil {
			return e.Error()
		}
		return ""
	}
}
