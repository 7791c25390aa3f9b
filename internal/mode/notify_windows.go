//go:build windows

package mode

import "syscall"

func init() {
	// 모드 변경 콜백은 (keyboard, mouse) 활성 상태를 int 인자 둘로 받는다
	notifyChange = func(cb uintptr, keyboardEnabled, mouseEnabled bool) {
		var kb, ms uintptr
		if keyboardEnabled {
			kb = 1
		}
		if mouseEnabled {
			ms = 1
		}
		syscall.SyscallN(cb, kb, ms)
	}
}
