// Package mode 캡처 모드 컨트롤러
//
// 렌더링/메시지 전달/키보드/마우스 활성 플래그와 토글 키 상태 머신을 관리한다.
// 모든 접근자는 "새 값은 선택적, 반환은 이전 값" 계약을 따른다.
package mode

import (
	"sync"

	"github.com/StopDragon/guihook/internal/diag"
	"github.com/StopDragon/guihook/internal/listener"
)

// DefaultToggleKey 기본 토글 스캔 코드 (DIK_DECIMAL, 숫자패드 '.')
const DefaultToggleKey = 210

// CooperativeDevice 협조 레벨 재적용이 가능한 입력 디바이스 (dinput 프록시가 구현)
type CooperativeDevice interface {
	// ReapplyCooperative exclusive=true면 게임이 입력을 독점하는 기본 상태로 복귀
	ReapplyCooperative(exclusive bool)
}

// notifyChange 모드 변경 콜백 호출기
// 실제 구현은 notify_windows.go에서 외부 함수 포인터를 호출한다. 테스트에서 대체.
var notifyChange = func(cb uintptr, keyboardEnabled, mouseEnabled bool) {}

// Controller 프로세스 전역 모드 상태
type Controller struct {
	mu               sync.Mutex
	rendering        bool
	messaging        bool
	keyboardDisabled bool
	mouseDisabled    bool
	toggleKey        uint32
	toggleWasDown    bool

	keyboard CooperativeDevice
	mouse    CooperativeDevice

	// changeFunc 내부(Go 쪽) 변경 관찰자. 외부 리스너보다 먼저 불린다.
	changeFunc func(keyboardEnabled, mouseEnabled bool)

	listeners listener.Set
}

// New 기본 토글 키로 초기화된 컨트롤러
func New() *Controller {
	return &Controller{toggleKey: DefaultToggleKey}
}

func exchangeBool(dst *bool, opt *bool) bool {
	old := *dst
	if opt != nil {
		*dst = *opt
	}
	return old
}

// Rendering 렌더 콜백 팬아웃 활성 여부 (이전 값 반환)
func (c *Controller) Rendering(opt *bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return exchangeBool(&c.rendering, opt)
}

// Messaging 윈도우 메시지 팬아웃 활성 여부 (이전 값 반환)
func (c *Controller) Messaging(opt *bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return exchangeBool(&c.messaging, opt)
}

// ToggleKey 토글 스캔 코드 조회/변경 (이전 값 반환, 256 이상은 무시)
func (c *Controller) ToggleKey(opt *uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.toggleKey
	if opt != nil && *opt < 256 {
		c.toggleKey = *opt
	}
	return old
}

// KeyboardEnabled 게임 쪽 키보드 입력이 살아있는지
func (c *Controller) KeyboardEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.keyboardDisabled
}

// MouseEnabled 게임 쪽 마우스 입력이 살아있는지
func (c *Controller) MouseEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.mouseDisabled
}

// EnableInput 키보드/마우스 활성화 설정 (nil이면 조회만)
// 둘 중 하나라도 실제로 바뀌면 협조 레벨 재적용과 리스너 통지가 일어난다.
func (c *Controller) EnableInput(keyboard, mouse *bool) (oldKeyboard, oldMouse bool) {
	c.mu.Lock()
	oldKeyboard = !c.keyboardDisabled
	oldMouse = !c.mouseDisabled
	if keyboard != nil {
		c.keyboardDisabled = !*keyboard
	}
	if mouse != nil {
		c.mouseDisabled = !*mouse
	}
	changed := oldKeyboard != !c.keyboardDisabled || oldMouse != !c.mouseDisabled
	c.mu.Unlock()

	if changed {
		c.inputChanged()
	}
	return oldKeyboard, oldMouse
}

// SetKeyboardDevice 재적용 대상 키보드 프록시 등록
func (c *Controller) SetKeyboardDevice(d CooperativeDevice) {
	c.mu.Lock()
	c.keyboard = d
	c.mu.Unlock()
}

// SetMouseDevice 재적용 대상 마우스 프록시 등록
func (c *Controller) SetMouseDevice(d CooperativeDevice) {
	c.mu.Lock()
	c.mouse = d
	c.mu.Unlock()
}

// SetChangeFunc 내부 변경 관찰자 등록
func (c *Controller) SetChangeFunc(f func(keyboardEnabled, mouseEnabled bool)) {
	c.mu.Lock()
	c.changeFunc = f
	c.mu.Unlock()
}

// UpdateListener 모드 변경 리스너 등록/제거
func (c *Controller) UpdateListener(cb uintptr, remove bool) bool {
	return c.listeners.Update(cb, remove)
}

// ObserveKeys 키보드 스냅샷 한 장을 토글 키 에지 검출기에 공급
// 직전 샘플에서 눌려 있던 키가 이번 샘플에서 떨어진 순간(릴리스 에지)에만
// 키보드+마우스 비활성 플래그를 함께 뒤집는다.
func (c *Controller) ObserveKeys(keys *[256]byte) {
	c.mu.Lock()
	down := keys[c.toggleKey] != 0
	was := c.toggleWasDown
	c.toggleWasDown = down
	flip := was && !down
	if flip {
		c.keyboardDisabled = !c.keyboardDisabled
		c.mouseDisabled = !c.mouseDisabled
	}
	c.mu.Unlock()

	if flip {
		diag.ToggleFlipped()
		c.inputChanged()
	}
}

// inputChanged 협조 레벨 재적용 후 리스너에 (키보드, 마우스) 활성 상태 통지
// 재적용과 통지는 잠금 밖에서 수행한다 (콜백이 다시 접근자를 불러도 안전).
func (c *Controller) inputChanged() {
	c.mu.Lock()
	kb, ms := !c.keyboardDisabled, !c.mouseDisabled
	kbDev, msDev := c.keyboard, c.mouse
	change := c.changeFunc
	c.mu.Unlock()

	if change != nil {
		change(kb, ms)
	}
	if kbDev != nil {
		kbDev.ReapplyCooperative(kb)
	}
	if msDev != nil {
		msDev.ReapplyCooperative(ms)
	}
	c.listeners.Each(func(cb uintptr) {
		notifyChange(cb, kb, ms)
	})
}
