//go:build windows

package dinput

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/StopDragon/guihook/internal/diag"
	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/logger"
	"github.com/StopDragon/guihook/internal/mode"
	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

const (
	diOK        = 0
	eInvalidArg = 0x80070057

	createName = "DirectInput8Create@dinput8.dll"
)

// 시스템 디바이스 GUID (dinput.h)
var (
	guidSysKeyboard = ole.NewGUID("{6F1D2B61-D5A0-11CF-BFC7-444553540000}")
	guidSysMouse    = ole.NewGUID("{6F1D2B60-D5A0-11CF-BFC7-444553540000}")
)

// IDirectInput8 가상 테이블 슬롯
const (
	diQueryInterface = iota
	diAddRef
	diRelease
	diCreateDevice
	diEnumDevices
	diGetDeviceStatus
	diRunControlPanel
	diInitialize
	diFindDevice
	diEnumDevicesBySemantics
	diConfigureDevices
)

// IDirectInputDevice8 가상 테이블 슬롯
const (
	devQueryInterface = iota
	devAddRef
	devRelease
	devGetCapabilities
	devEnumObjects
	devGetProperty
	devSetProperty
	devAcquire
	devUnacquire
	devGetDeviceState
	devGetDeviceData
	devSetDataFormat
	devSetEventNotification
	devSetCooperativeLevel
	devGetObjectInfo
	devGetDeviceInfo
	devRunControlPanel
	devInitialize
	devCreateEffect
	devEnumEffects
	devGetEffectInfo
	devGetForceFeedbackState
	devSendForceFeedbackCommand
	devEnumCreatedEffectObjects
	devEscape
	devPoll
	devSendDeviceData
	devEnumEffectsInFile
	devWriteEffectToFile
	devBuildActionMap
	devSetActionMap
	devGetImageInfo
)

func call(fn uintptr, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(fn, args...)
	return r
}

func realVtblEntry(obj uintptr, slot int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
}

// 게임이 들고 있는 프록시 포인터 → Go 객체. Release가 0을 돌려주면 내려간다.
var (
	liveMu        sync.Mutex
	liveFactories = map[uintptr]*factoryProxy{}
	liveDevices   = map[uintptr]*deviceProxy{}
)

// Manager DirectInput8Create 디투어와 프록시 수명 관리
type Manager struct {
	mode       *mode.Controller
	createOrig uintptr
	thunk      uintptr
}

// NewManager 모드 컨트롤러에 연결된 매니저
func NewManager(m *mode.Controller) *Manager {
	mgr := &Manager{mode: m}
	mgr.thunk = windows.NewCallback(mgr.createDetour)
	return mgr
}

// Install DirectInput8Create 디투어 설치
func (m *Manager) Install(h *hooks.API) bool {
	lasterr.Clear()
	if !h.Detour(createName, m.thunk, &m.createOrig) {
		lasterr.Set("DirectInput 디투어 실패: %s", h.LastError())
		return false
	}
	if !h.Apply() {
		lasterr.Set("DirectInput 디투어 적용 실패: %s", h.LastError())
		return false
	}
	logger.Info("DirectInput 디투어 설치 완료")
	return true
}

// createDetour 원본 호출 성공 시 반환된 팩토리를 프록시로 바꿔치기
func (m *Manager) createDetour(hinst, version, riid, ppvOut, punkOuter uintptr) uintptr {
	r := call(m.createOrig, hinst, version, riid, ppvOut, punkOuter)
	if int32(r) < 0 || ppvOut == 0 {
		return r
	}
	real := *(*uintptr)(unsafe.Pointer(ppvOut))
	if real == 0 {
		return r
	}
	p := newFactoryProxy(real, m)
	*(*uintptr)(unsafe.Pointer(ppvOut)) = p.self()
	logger.Debug("DirectInput 팩토리 프록시 생성: real=%#x", real)
	return r
}

// factoryProxy IDirectInput8 래퍼. 첫 필드가 가상 테이블 포인터여야 한다.
type factoryProxy struct {
	vtbl *[11]uintptr
	real uintptr
	mgr  *Manager
}

func newFactoryProxy(real uintptr, mgr *Manager) *factoryProxy {
	p := &factoryProxy{vtbl: &factoryVtbl, real: real, mgr: mgr}
	liveMu.Lock()
	liveFactories[p.self()] = p
	liveMu.Unlock()
	return p
}

func (p *factoryProxy) self() uintptr { return uintptr(unsafe.Pointer(p)) }

func lookupFactory(this uintptr) *factoryProxy {
	liveMu.Lock()
	defer liveMu.Unlock()
	return liveFactories[this]
}

func forwardFactory(this uintptr, slot int, args ...uintptr) uintptr {
	p := lookupFactory(this)
	if p == nil {
		return eInvalidArg
	}
	return call(realVtblEntry(p.real, slot), append([]uintptr{p.real}, args...)...)
}

func factoryRelease(this uintptr) uintptr {
	p := lookupFactory(this)
	if p == nil {
		return 0
	}
	n := call(realVtblEntry(p.real, diRelease), p.real)
	if n == 0 {
		liveMu.Lock()
		delete(liveFactories, this)
		liveMu.Unlock()
		logger.Debug("DirectInput 팩토리 프록시 해제")
	}
	return n
}

// factoryCreateDevice 시스템 키보드/마우스만 프록시로 감싼다
func factoryCreateDevice(this, rguid, outDevice, punkOuter uintptr) uintptr {
	p := lookupFactory(this)
	if p == nil {
		return eInvalidArg
	}
	r := call(realVtblEntry(p.real, diCreateDevice), p.real, rguid, outDevice, punkOuter)
	if int32(r) < 0 || outDevice == 0 || rguid == 0 {
		return r
	}
	guid := (*ole.GUID)(unsafe.Pointer(rguid))
	var kind deviceKind
	switch {
	case ole.IsEqualGUID(guid, guidSysKeyboard):
		kind = kindKeyboard
	case ole.IsEqualGUID(guid, guidSysMouse):
		kind = kindMouse
	default:
		return r
	}
	real := *(*uintptr)(unsafe.Pointer(outDevice))
	if real == 0 {
		return r
	}
	d := newDeviceProxy(real, kind, p.mgr)
	*(*uintptr)(unsafe.Pointer(outDevice)) = d.self()
	if kind == kindKeyboard {
		p.mgr.mode.SetKeyboardDevice(d)
		logger.Info("키보드 디바이스 프록시 연결")
	} else {
		p.mgr.mode.SetMouseDevice(d)
		logger.Info("마우스 디바이스 프록시 연결")
	}
	return r
}

type deviceKind int

const (
	kindKeyboard deviceKind = iota
	kindMouse
)

// deviceProxy IDirectInputDevice8 래퍼
type deviceProxy struct {
	vtbl *[32]uintptr
	real uintptr
	kind deviceKind
	mgr  *Manager

	mu         sync.Mutex
	dataFormat uintptr
	coopWindow uintptr
	coopFlags  uint32
}

func newDeviceProxy(real uintptr, kind deviceKind, mgr *Manager) *deviceProxy {
	p := &deviceProxy{vtbl: &deviceVtbl, real: real, kind: kind, mgr: mgr}
	liveMu.Lock()
	liveDevices[p.self()] = p
	liveMu.Unlock()
	return p
}

func (p *deviceProxy) self() uintptr { return uintptr(unsafe.Pointer(p)) }

func lookupDevice(this uintptr) *deviceProxy {
	liveMu.Lock()
	defer liveMu.Unlock()
	return liveDevices[this]
}

func forwardDevice(this uintptr, slot int, args ...uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return eInvalidArg
	}
	return call(realVtblEntry(p.real, slot), append([]uintptr{p.real}, args...)...)
}

func deviceRelease(this uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return 0
	}
	n := call(realVtblEntry(p.real, devRelease), p.real)
	if n == 0 {
		liveMu.Lock()
		delete(liveDevices, this)
		liveMu.Unlock()
		if p.kind == kindKeyboard {
			p.mgr.mode.SetKeyboardDevice(nil)
		} else {
			p.mgr.mode.SetMouseDevice(nil)
		}
		logger.Debug("디바이스 프록시 해제: kind=%d", p.kind)
	}
	return n
}

// deviceGetDeviceState 원본 전달 후 관찰, 채널이 꺼져 있으면 버퍼를 0으로
func deviceGetDeviceState(this, cbData, lpData uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return eInvalidArg
	}
	r := call(realVtblEntry(p.real, devGetDeviceState), p.real, cbData, lpData)
	if int32(r) < 0 || lpData == 0 {
		return r
	}
	switch p.kind {
	case kindKeyboard:
		diag.KeyboardPolled()
		if cbData >= keyboardStateSize {
			keys := (*[keyboardStateSize]byte)(unsafe.Pointer(lpData))
			p.mgr.mode.ObserveKeys(keys)
			maskState(keys[:], p.mgr.mode.KeyboardEnabled())
		}
	case kindMouse:
		diag.MousePolled()
		buf := unsafe.Slice((*byte)(unsafe.Pointer(lpData)), cbData)
		maskState(buf, p.mgr.mode.MouseEnabled())
	}
	return r
}

// deviceGetDeviceData 버퍼드 읽기
// 키보드는 버퍼드 경로만 쓰는 게임도 토글 키를 감지하도록 상태를 한 번
// 폴링한다. 채널이 꺼져 있으면 쌓인 이벤트를 전부 비우고 0건을 보고한다.
func deviceGetDeviceData(this, cbObjectData, rgdod, pdwInOut, flags uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return eInvalidArg
	}

	enabled := true
	switch p.kind {
	case kindKeyboard:
		var keys [keyboardStateSize]byte
		r := call(realVtblEntry(p.real, devGetDeviceState),
			p.real, keyboardStateSize, uintptr(unsafe.Pointer(&keys)))
		if r == diOK {
			p.mgr.mode.ObserveKeys(&keys)
		}
		enabled = p.mgr.mode.KeyboardEnabled()
	case kindMouse:
		enabled = p.mgr.mode.MouseEnabled()
	}

	if enabled {
		return call(realVtblEntry(p.real, devGetDeviceData),
			p.real, cbObjectData, rgdod, pdwInOut, flags)
	}

	buf, count, drainFlags := drainRequest()
	r := call(realVtblEntry(p.real, devGetDeviceData),
		p.real, cbObjectData, buf, uintptr(unsafe.Pointer(&count)), drainFlags)
	if pdwInOut != 0 {
		*(*uint32)(unsafe.Pointer(pdwInOut)) = 0
	}
	return r
}

func deviceSetDataFormat(this, lpdf uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return eInvalidArg
	}
	r := call(realVtblEntry(p.real, devSetDataFormat), p.real, lpdf)
	if r == diOK {
		p.mu.Lock()
		p.dataFormat = lpdf
		p.mu.Unlock()
	}
	return r
}

func deviceSetCooperativeLevel(this, hwnd, flags uintptr) uintptr {
	p := lookupDevice(this)
	if p == nil {
		return eInvalidArg
	}
	r := call(realVtblEntry(p.real, devSetCooperativeLevel), p.real, hwnd, flags)
	if r == diOK {
		p.mu.Lock()
		p.coopWindow = hwnd
		p.coopFlags = uint32(flags)
		p.mu.Unlock()
	}
	return r
}

// ReapplyCooperative 채널 상태에 맞춰 협조 레벨을 다시 적용
// 게임이 마지막으로 성공시킨 설정을 기준으로 독점/비독점 비트만 바꾼다.
func (p *deviceProxy) ReapplyCooperative(exclusive bool) {
	p.mu.Lock()
	hwnd, flags, df := p.coopWindow, p.coopFlags, p.dataFormat
	p.mu.Unlock()
	if hwnd == 0 {
		return
	}
	call(realVtblEntry(p.real, devUnacquire), p.real)
	call(realVtblEntry(p.real, devSetCooperativeLevel),
		p.real, hwnd, uintptr(cooperativeFlags(flags, exclusive)))
	if df != 0 {
		call(realVtblEntry(p.real, devSetDataFormat), p.real, df)
	}
	call(realVtblEntry(p.real, devAcquire), p.real)
}

// 프록시 가상 테이블. 프로세스당 한 번 만들고 모든 프록시가 공유한다.
var (
	factoryVtbl [11]uintptr
	deviceVtbl  [32]uintptr
)

func facFwd0(slot int) uintptr {
	return windows.NewCallback(func(this uintptr) uintptr {
		return forwardFactory(this, slot)
	})
}

func facFwd1(slot int) uintptr {
	return windows.NewCallback(func(this, a uintptr) uintptr {
		return forwardFactory(this, slot, a)
	})
}

func facFwd2(slot int) uintptr {
	return windows.NewCallback(func(this, a, b uintptr) uintptr {
		return forwardFactory(this, slot, a, b)
	})
}

func facFwd3(slot int) uintptr {
	return windows.NewCallback(func(this, a, b, c uintptr) uintptr {
		return forwardFactory(this, slot, a, b, c)
	})
}

func facFwd4(slot int) uintptr {
	return windows.NewCallback(func(this, a, b, c, d uintptr) uintptr {
		return forwardFactory(this, slot, a, b, c, d)
	})
}

func facFwd5(slot int) uintptr {
	return windows.NewCallback(func(this, a, b, c, d, e uintptr) uintptr {
		return forwardFactory(this, slot, a, b, c, d, e)
	})
}

func devFwd0(slot int) uintptr {
	return windows.NewCallback(func(this uintptr) uintptr {
		return forwardDevice(this, slot)
	})
}

func devFwd1(slot int) uintptr {
	return windows.NewCallback(func(this, a uintptr) uintptr {
		return forwardDevice(this, slot, a)
	})
}

func devFwd2(slot int) uintptr {
	return windows.NewCallback(func(this, a, b uintptr) uintptr {
		return forwardDevice(this, slot, a, b)
	})
}

func devFwd3(slot int) uintptr {
	return windows.NewCallback(func(this, a, b, c uintptr) uintptr {
		return forwardDevice(this, slot, a, b, c)
	})
}

func devFwd4(slot int) uintptr {
	return windows.NewCallback(func(this, a, b, c, d uintptr) uintptr {
		return forwardDevice(this, slot, a, b, c, d)
	})
}

func init() {
	factoryVtbl = [11]uintptr{
		diQueryInterface:         facFwd2(diQueryInterface),
		diAddRef:                 facFwd0(diAddRef),
		diRelease:                windows.NewCallback(factoryRelease),
		diCreateDevice:           windows.NewCallback(factoryCreateDevice),
		diEnumDevices:            facFwd4(diEnumDevices),
		diGetDeviceStatus:        facFwd1(diGetDeviceStatus),
		diRunControlPanel:        facFwd2(diRunControlPanel),
		diInitialize:             facFwd2(diInitialize),
		diFindDevice:             facFwd3(diFindDevice),
		diEnumDevicesBySemantics: facFwd5(diEnumDevicesBySemantics),
		diConfigureDevices:       facFwd4(diConfigureDevices),
	}

	deviceVtbl = [32]uintptr{
		devQueryInterface:           devFwd2(devQueryInterface),
		devAddRef:                   devFwd0(devAddRef),
		devRelease:                  windows.NewCallback(deviceRelease),
		devGetCapabilities:          devFwd1(devGetCapabilities),
		devEnumObjects:              devFwd3(devEnumObjects),
		devGetProperty:              devFwd2(devGetProperty),
		devSetProperty:              devFwd2(devSetProperty),
		devAcquire:                  devFwd0(devAcquire),
		devUnacquire:                devFwd0(devUnacquire),
		devGetDeviceState:           windows.NewCallback(deviceGetDeviceState),
		devGetDeviceData:            windows.NewCallback(deviceGetDeviceData),
		devSetDataFormat:            windows.NewCallback(deviceSetDataFormat),
		devSetEventNotification:     devFwd1(devSetEventNotification),
		devSetCooperativeLevel:      windows.NewCallback(deviceSetCooperativeLevel),
		devGetObjectInfo:            devFwd3(devGetObjectInfo),
		devGetDeviceInfo:            devFwd1(devGetDeviceInfo),
		devRunControlPanel:          devFwd2(devRunControlPanel),
		devInitialize:               devFwd3(devInitialize),
		devCreateEffect:             devFwd4(devCreateEffect),
		devEnumEffects:              devFwd3(devEnumEffects),
		devGetEffectInfo:            devFwd2(devGetEffectInfo),
		devGetForceFeedbackState:    devFwd1(devGetForceFeedbackState),
		devSendForceFeedbackCommand: devFwd1(devSendForceFeedbackCommand),
		devEnumCreatedEffectObjects: devFwd3(devEnumCreatedEffectObjects),
		devEscape:                   devFwd1(devEscape),
		devPoll:                     devFwd0(devPoll),
		devSendDeviceData:           devFwd4(devSendDeviceData),
		devEnumEffectsInFile:        devFwd4(devEnumEffectsInFile),
		devWriteEffectToFile:        devFwd4(devWriteEffectToFile),
		devBuildActionMap:           devFwd3(devBuildActionMap),
		devSetActionMap:             devFwd3(devSetActionMap),
		devGetImageInfo:             devFwd1(devGetImageInfo),
	}
}
