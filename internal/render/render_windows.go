//go:build windows

package render

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/StopDragon/guihook/internal/devhist"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindow                = user32.NewProc("GetWindow")
	procSetWindowLongPtrW        = user32.NewProc("SetWindowLongPtrW")
	procCallWindowProcW          = user32.NewProc("CallWindowProcW")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procClipCursor               = user32.NewProc("ClipCursor")
)

const (
	gwOwner = 4
	// GWLP_WNDPROC (-4)
	gwlpWndProcIndex = ^uintptr(3)
)

func init() {
	callRenderListener = func(cb, chain, syncInterval, flags uintptr) {
		syscall.SyscallN(cb, chain, syncInterval, flags)
	}
	callMessageListener = func(cb, hwnd, msg, wparam, lparam uintptr) {
		syscall.SyscallN(cb, hwnd, msg, wparam, lparam)
	}
	callPresentOriginal = func(fn, chain, syncInterval, flags uintptr) uintptr {
		if fn == 0 {
			return 0
		}
		r, _, _ := syscall.SyscallN(fn, chain, syncInterval, flags)
		return r
	}
	callWindowProc = func(proc, hwnd, msg, wparam, lparam uintptr) uintptr {
		r, _, _ := procCallWindowProcW.Call(proc, hwnd, msg, wparam, lparam)
		return r
	}
	subclassWindow = func(hwnd, proc uintptr) uintptr {
		r, _, _ := procSetWindowLongPtrW.Call(hwnd, gwlpWndProcIndex, proc)
		return r
	}
}

// dxgiModeDesc DXGI_MODE_DESC
type dxgiModeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRateNum   uint32
	RefreshRateDen   uint32
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

// dxgiSampleDesc DXGI_SAMPLE_DESC
type dxgiSampleDesc struct {
	Count   uint32
	Quality uint32
}

// swapChainDesc DXGI_SWAP_CHAIN_DESC (x64 레이아웃, OutputWindow는 오프셋 48)
type swapChainDesc struct {
	BufferDesc   dxgiModeDesc
	SampleDesc   dxgiSampleDesc
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr
	Windowed     int32
	SwapEffect   uint32
	Flags        uint32
}

// InstallThunks 디투어 진입점(NewCallback) 생성 후 등록
// 프로세스 수명 동안 한 번만 부른다. NewCallback은 회수되지 않는다.
func (c *Controller) InstallThunks() {
	c.SetThunks(
		windows.NewCallback(c.createDeviceDetour),
		windows.NewCallback(c.presentDetour),
		windows.NewCallback(c.wndprocDetour),
	)
}

// createDeviceDetour D3D11CreateDeviceAndSwapChain 디투어 본체
// 먼저 원본을 호출하고, 성공했을 때만 출력 포인터를 읽어 이력에 남긴다.
func (c *Controller) createDeviceDetour(adapter, driverType, software, flags,
	featureLevels, numLevels, sdkVersion, desc,
	outChain, outDevice, outLevel, outContext uintptr) uintptr {

	r, _, _ := syscall.SyscallN(c.CreateOriginal(),
		adapter, driverType, software, flags,
		featureLevels, numLevels, sdkVersion, desc,
		outChain, outDevice, outLevel, outContext)
	if int32(r) < 0 {
		return r
	}

	var rec devhist.Record
	if outChain != 0 {
		rec.SwapChain = *(*uintptr)(unsafe.Pointer(outChain))
	}
	if outDevice != 0 {
		rec.Device = *(*uintptr)(unsafe.Pointer(outDevice))
	}
	if outContext != 0 {
		rec.Context = *(*uintptr)(unsafe.Pointer(outContext))
	}
	if desc != 0 {
		rec.Window = (*swapChainDesc)(unsafe.Pointer(desc)).OutputWindow
	}
	c.ObserveCreation(rec)
	return r
}

func (c *Controller) presentDetour(chain, syncInterval, flags uintptr) uintptr {
	return c.Present(chain, syncInterval, flags)
}

func (c *Controller) wndprocDetour(hwnd, msg, wparam, lparam uintptr) uintptr {
	return c.WindowMessage(hwnd, msg, wparam, lparam)
}

// enum 콜백은 프로세스당 하나만 만들고 상태는 뮤텍스로 보호한다
var (
	enumMu    sync.Mutex
	enumPid   uint32
	enumFound uintptr
	enumCB    = windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		if pid != enumPid {
			return 1
		}
		if owner, _, _ := procGetWindow.Call(hwnd, gwOwner); owner != 0 {
			return 1
		}
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		enumFound = hwnd
		return 0
	})
)

// topLevelVisibleWindow 이 프로세스의 소유자 없는 보이는 최상위 윈도우
func topLevelVisibleWindow(pid uint32) uintptr {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumPid = pid
	enumFound = 0
	procEnumWindows.Call(enumCB, 0)
	return enumFound
}

// findWindowByTitle 타이틀 정확 일치 검색
func findWindowByTitle(title string) uintptr {
	p, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(p)))
	return hwnd
}

// SetupFromDesktop 두 경로로 게임 윈도우를 찾아 Setup 수행
func (c *Controller) SetupFromDesktop(title string) bool {
	pid := windows.GetCurrentProcessId()
	top := topLevelVisibleWindow(pid)
	titled := findWindowByTitle(title)
	return c.Setup(top, titled)
}

// ConfineCursor 커서를 게임 윈도우 영역에 가두거나 해제
func (c *Controller) ConfineCursor(confine bool) bool {
	if !confine {
		r, _, _ := procClipCursor.Call(0)
		return r != 0
	}
	hwnd := c.Binding().Window
	if hwnd == 0 {
		return false
	}
	var rect struct{ Left, Top, Right, Bottom int32 }
	if r, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); r == 0 {
		return false
	}
	r, _, _ := procClipCursor.Call(uintptr(unsafe.Pointer(&rect)))
	return r != 0
}
