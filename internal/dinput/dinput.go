// Package dinput DirectInput8 팩토리/디바이스 프록시
//
// DirectInput8Create를 디투어해 팩토리를 프록시로 감싸고, 시스템 키보드와
// 마우스 디바이스의 폴링 경로를 가로챈다. 관찰자(토글 키 검출)는 항상
// 진짜 상태를 보고, 게임은 채널이 꺼져 있으면 0으로 덮인 버퍼를 받는다.
// COM 글루는 proxy_windows.go에 있다.
package dinput

// 협조 레벨 플래그 (dinput.h)
const (
	disclExclusive    = 0x01
	disclNonexclusive = 0x02
	disclForeground   = 0x04
	disclBackground   = 0x08
)

// keyboardStateSize c_dfDIKeyboard 상태 버퍼 크기
const keyboardStateSize = 256

// GetDeviceData 호출 관련 값 (dinput.h)
const (
	drainAll  = 0xFFFFFFFF // INFINITE: 쌓인 이벤트 전부
	digddPeek = 0x0001     // 큐를 소비하지 않고 조회
)

// MouseState DIMOUSESTATE2 레이아웃
type MouseState struct {
	X       int32
	Y       int32
	Z       int32
	Buttons [8]byte
}

// ObjectData DIDEVICEOBJECTDATA (x64 레이아웃, 24바이트)
type ObjectData struct {
	Ofs       uint32
	Data      uint32
	TimeStamp uint32
	Sequence  uint32
	AppData   uintptr
}

// cooperativeFlags 기억해 둔 협조 레벨에서 독점/비독점 비트만 바꾼다
// 채널이 살아 있으면 게임이 쓰던 독점 모드, 꺼져 있으면 비독점으로.
func cooperativeFlags(remembered uint32, exclusive bool) uint32 {
	f := remembered &^ uint32(disclExclusive|disclNonexclusive)
	if exclusive {
		return f | disclExclusive
	}
	return f | disclNonexclusive
}

// drainRequest 꺼진 채널의 큐를 비우는 호출 인자 (버퍼, 개수, 플래그)
// 게임이 PEEK 플래그를 줬더라도 비우기는 파괴적이어야 하므로 호출자
// 플래그를 따르지 않고 항상 0으로 간다.
func drainRequest() (rgdod uintptr, count uint32, flags uintptr) {
	return 0, drainAll, 0
}

// maskState 채널이 꺼져 있으면 게임에 넘길 버퍼를 0으로 덮는다
// 관찰자 통지가 끝난 뒤에 불러야 한다.
func maskState(buf []byte, enabled bool) {
	if enabled {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
}
