// Package lasterr 프로세스 전역 마지막 오류 문자열
//
// 외부 API 진입 시 Clear, 실패 시 Set, 조회는 2단계(크기→본문) 프로토콜.
package lasterr

import (
	"fmt"
	"sync"
	"unsafe"
)

var (
	mu   sync.Mutex
	text string
	// fallback 저장된 오류가 없을 때 시스템 오류를 대신 보고 (windows에서 설정)
	fallback = func() string { return "" }
)

// Set 오류 기록
func Set(format string, args ...interface{}) {
	mu.Lock()
	text = fmt.Sprintf(format, args...)
	mu.Unlock()
}

// Clear 오류 소거 (공개 API 진입 시마다 호출)
func Clear() {
	mu.Lock()
	text = ""
	mu.Unlock()
}

// Text 현재 오류 (비어 있으면 시스템 오류 폴백)
func Text() string {
	mu.Lock()
	s := text
	mu.Unlock()
	if s == "" {
		s = fallback()
	}
	return s
}

// Report 2단계 조회 프로토콜
//
// message가 nil이면 size에 필요한 바이트 수(UTF-8, NUL 종결 포함)를 쓴다.
// message가 있으면 size가 가리키는 용량에 맞게 잘라 복사하고 항상 NUL로
// 종결한 뒤, 실제로 쓴 바이트 수를 size에 돌려준다.
func Report(size *uintptr, message *byte) bool {
	if size == nil {
		return false
	}
	s := Text()
	if message == nil {
		*size = uintptr(len(s) + 1)
		return true
	}
	if *size == 0 {
		return false
	}
	n := len(s)
	if uintptr(n) > *size-1 {
		n = int(*size - 1)
	}
	dst := unsafe.Slice(message, n+1)
	copy(dst, s[:n])
	dst[n] = 0
	*size = uintptr(n + 1)
	return true
}
