// Package render 스왑체인 Present 가로채기와 윈도우 서브클래싱
//
// 디바이스 생성 디투어로 (스왑체인, 디바이스, 컨텍스트, 윈도우) 튜플을
// 이력에 쌓고, 게임 윈도우가 준비되면 그 윈도우에 묶인 스왑체인을 골라
// Present 슬롯을 디투어하고 윈도우 프로시저를 교체한다. 디투어 진입점
// 자체(NewCallback)와 Win32 호출은 render_windows.go에 있다.
package render

import (
	"sync"
	"unsafe"

	"github.com/StopDragon/guihook/internal/devhist"
	"github.com/StopDragon/guihook/internal/diag"
	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/listener"
	"github.com/StopDragon/guihook/internal/logger"
	"github.com/StopDragon/guihook/internal/mode"
)

// State 초기화 단계
type State int

const (
	Uninitialized State = iota
	DeviceHookInstalled
	BindingSelected
	Ready
)

// IDXGISwapChain 가상 테이블에서 Present까지의 슬롯 배치
// 상속 계층(IUnknown → IDXGIObject → IDXGIDeviceSubObject)의 슬롯 수를
// 더한 위치가 Present다. 하드코딩 숫자 대신 계산으로 남긴다.
const (
	slotsIUnknown            = 3 // QueryInterface, AddRef, Release
	slotsDXGIObject          = 4 // SetPrivateData, SetPrivateDataInterface, GetPrivateData, GetParent
	slotsDXGIDeviceSubObject = 1 // GetDevice
	presentSlot              = slotsIUnknown + slotsDXGIObject + slotsDXGIDeviceSubObject
)

const (
	profileName      = "GUIHOOK"
	createDeviceName = "D3D11CreateDeviceAndSwapChain@d3d11.dll"
	presentName      = "IDXGISwapChain::Present"
)

// 게임에 전달하지 않는 메시지 집합
const (
	wmKeyDown       = 0x0100
	wmKeyUp         = 0x0101
	wmChar          = 0x0102
	wmLButtonDown   = 0x0201
	wmLButtonUp     = 0x0202
	wmLButtonDblClk = 0x0203
	wmRButtonDown   = 0x0204
	wmRButtonUp     = 0x0205
	wmRButtonDblClk = 0x0206
	wmMButtonDown   = 0x0207
	wmMButtonUp     = 0x0208
	wmMButtonDblClk = 0x0209
	wmMouseWheel    = 0x020A
	wmXButtonDown   = 0x020B
	wmXButtonUp     = 0x020C
	wmXButtonDblClk = 0x020D
	wmMouseHWheel   = 0x020E
)

// 외부 함수 포인터 호출기. windows 글루가 init에서 채우고 테스트가 대체한다.
var (
	callRenderListener  = func(cb, chain, syncInterval, flags uintptr) {}
	callMessageListener = func(cb, hwnd, msg, wparam, lparam uintptr) {}
	callPresentOriginal = func(fn, chain, syncInterval, flags uintptr) uintptr { return 0 }
	callWindowProc      = func(proc, hwnd, msg, wparam, lparam uintptr) uintptr { return 0 }
	subclassWindow      = func(hwnd, proc uintptr) uintptr { return 0 }
)

// Controller 렌더 훅 상태 머신
type Controller struct {
	mu      sync.Mutex
	mode    *mode.Controller
	history *devhist.Registry
	hooks   *hooks.API
	state   State

	binding     devhist.Record
	createOrig  uintptr
	presentOrig uintptr
	wndprocOrig uintptr

	// 디투어/서브클래스 진입점. windows 글루가 NewCallback으로 만든다.
	createThunk  uintptr
	presentThunk uintptr
	wndprocThunk uintptr

	renderListeners  listener.Set
	messageListeners listener.Set
}

// New 모드 컨트롤러에 연결된 렌더 컨트롤러
func New(m *mode.Controller) *Controller {
	return &Controller{mode: m, history: &devhist.Registry{}}
}

// SetThunks 디투어 진입점 등록 (훅 설치 전에 불러야 한다)
func (c *Controller) SetThunks(create, present, wndproc uintptr) {
	c.mu.Lock()
	c.createThunk = create
	c.presentThunk = present
	c.wndprocThunk = wndproc
	c.mu.Unlock()
}

// State 현재 초기화 단계
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Binding 선택된 튜플 (미선택이면 제로)
func (c *Controller) Binding() devhist.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.binding
}

// CreateOriginal 원본 디바이스 생성 함수
func (c *Controller) CreateOriginal() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createOrig
}

// PresentOriginal 원본 Present
func (c *Controller) PresentOriginal() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presentOrig
}

// WndprocOriginal 교체 전 윈도우 프로시저
func (c *Controller) WndprocOriginal() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wndprocOrig
}

// History 생성 이력 (진단용)
func (c *Controller) History() *devhist.Registry {
	return c.history
}

// InstallDeviceHook 디바이스 생성 함수 디투어 설치
// 훅 서비스가 도착하는 즉시 불러야 생성 호출을 놓치지 않는다.
func (c *Controller) InstallDeviceHook(h *hooks.API) bool {
	lasterr.Clear()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Uninitialized {
		return true
	}
	if !h.Valid() {
		lasterr.Set("후킹 서비스가 불완전함")
		return false
	}
	if c.createThunk == 0 {
		lasterr.Set("디바이스 생성 진입점 미등록")
		return false
	}
	if !h.Profile(profileName) {
		lasterr.Set("후킹 프로파일 생성 실패: %s", h.LastError())
		return false
	}
	if !h.Detour(createDeviceName, c.createThunk, &c.createOrig) {
		lasterr.Set("디바이스 생성 디투어 실패: %s", h.LastError())
		return false
	}
	if !h.Apply() {
		lasterr.Set("디투어 적용 실패: %s", h.LastError())
		return false
	}
	c.hooks = h
	c.state = DeviceHookInstalled
	logger.Info("디바이스 생성 디투어 설치 완료")
	return true
}

// ObserveCreation 가로챈 생성 호출 1건 기록
// 원본 호출이 성공으로 끝난 뒤에만 불러야 한다. 불완전 튜플은 버려진다.
func (c *Controller) ObserveCreation(r devhist.Record) bool {
	if !c.history.Record(r) {
		logger.Debug("불완전한 디바이스 튜플 무시: %+v", r)
		return false
	}
	diag.DeviceRecorded()
	logger.Debug("디바이스 기록: swapchain=%#x window=%#x (총 %d건)",
		r.SwapChain, r.Window, c.history.Len())
	return true
}

// Setup 게임 윈도우 확정 후 Present 디투어와 서브클래싱 수행
// top은 프로세스의 보이는 최상위 윈도우, titled는 타이틀 검색 결과.
// 두 조회가 같은 윈도우를 가리키고 그 윈도우의 튜플이 이력에 있어야 한다.
func (c *Controller) Setup(top, titled uintptr) bool {
	lasterr.Clear()
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Ready:
		return true
	case Uninitialized:
		lasterr.Set("디바이스 훅 미설치 상태에서 셋업 시도")
		return false
	}

	if c.state == DeviceHookInstalled {
		rec, ok := c.history.SelectActive(top, titled)
		if !ok {
			lasterr.Set("윈도우 %#x에 묶인 스왑체인 없음 (이력 %d건)", top, c.history.Len())
			return false
		}
		c.binding = rec
		c.state = BindingSelected
		logger.Info("스왑체인 바인딩: swapchain=%#x window=%#x", rec.SwapChain, rec.Window)
	}

	if c.presentOrig == 0 {
		addr := vtblEntry(c.binding.SwapChain, presentSlot)
		if addr == 0 {
			lasterr.Set("Present 슬롯 조회 실패")
			return false
		}
		h := c.hooks
		if !h.MapName(presentName, addr) {
			lasterr.Set("Present 심볼 등록 실패: %s", h.LastError())
			return false
		}
		if !h.Detour(presentName, c.presentThunk, &c.presentOrig) {
			lasterr.Set("Present 디투어 실패: %s", h.LastError())
			return false
		}
		if !h.Apply() {
			c.presentOrig = 0
			lasterr.Set("Present 디투어 적용 실패: %s", h.LastError())
			return false
		}
	}

	orig := subclassWindow(c.binding.Window, c.wndprocThunk)
	if orig == 0 {
		lasterr.Set("윈도우 프로시저 교체 실패")
		return false
	}
	c.wndprocOrig = orig
	c.state = Ready
	logger.Info("렌더 훅 준비 완료: present=%#x wndproc=%#x", c.presentOrig, c.wndprocOrig)
	return true
}

// Present 디투어 본체
// 렌더링이 켜져 있으면 리스너에 팬아웃하고, 어느 경우든 원본을 호출한다.
func (c *Controller) Present(chain, syncInterval, flags uintptr) uintptr {
	diag.FramePresented()
	if c.mode.Rendering(nil) {
		fanned := false
		c.renderListeners.Each(func(cb uintptr) {
			callRenderListener(cb, chain, syncInterval, flags)
			fanned = true
		})
		if fanned {
			diag.FrameFannedOut()
		}
	}
	diag.TrySave()

	c.mu.Lock()
	orig := c.presentOrig
	c.mu.Unlock()
	return callPresentOriginal(orig, chain, syncInterval, flags)
}

// WindowMessage 교체된 윈도우 프로시저 본체
// 메시지 전달이 켜져 있으면 리스너에 팬아웃한 뒤, 입력성 메시지는
// 삼키고(0 반환) 나머지는 원본 프로시저로 넘긴다.
func (c *Controller) WindowMessage(hwnd, msg, wparam, lparam uintptr) uintptr {
	diag.MessageSeen()
	if c.mode.Messaging(nil) {
		c.messageListeners.Each(func(cb uintptr) {
			callMessageListener(cb, hwnd, msg, wparam, lparam)
		})
	}
	if swallowed(uint32(msg)) {
		diag.MessageSwallowed()
		return 0
	}
	c.mu.Lock()
	orig := c.wndprocOrig
	c.mu.Unlock()
	return callWindowProc(orig, hwnd, msg, wparam, lparam)
}

// Parameter 이름으로 바인딩 핸들 조회
func (c *Controller) Parameter(name string) (uintptr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "ID3D11Device":
		return c.binding.Device, true
	case "ID3D11DeviceContext":
		return c.binding.Context, true
	case "IDXGISwapChain":
		return c.binding.SwapChain, true
	case "window":
		return c.binding.Window, true
	}
	return 0, false
}

// UpdateRenderListener 렌더 리스너 등록/제거
func (c *Controller) UpdateRenderListener(cb uintptr, remove bool) bool {
	return c.renderListeners.Update(cb, remove)
}

// UpdateMessageListener 메시지 리스너 등록/제거
func (c *Controller) UpdateMessageListener(cb uintptr, remove bool) bool {
	return c.messageListeners.Update(cb, remove)
}

// swallowed 게임에 전달하지 않는 입력성 메시지인지
func swallowed(msg uint32) bool {
	switch msg {
	case wmKeyDown, wmKeyUp, wmChar,
		wmLButtonDown, wmLButtonUp, wmLButtonDblClk,
		wmRButtonDown, wmRButtonUp, wmRButtonDblClk,
		wmMButtonDown, wmMButtonUp, wmMButtonDblClk,
		wmXButtonDown, wmXButtonUp, wmXButtonDblClk,
		wmMouseWheel, wmMouseHWheel:
		return true
	}
	return false
}

// vtblEntry COM 객체의 가상 테이블 슬롯 읽기
func vtblEntry(obj uintptr, slot int) uintptr {
	if obj == 0 {
		return 0
	}
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	if vtbl == 0 {
		return 0
	}
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
}
