//go:build windows

package hooks

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/nanitefactory/gominhook"
	"golang.org/x/sys/windows"
)

// minhookVersion NewMinhook이 보고하는 구현 버전
var minhookVersion = [3]int{APIVersion, 1, 0}

// minhook gominhook 기반 후킹 서비스 상태
type minhook struct {
	mu      sync.Mutex
	names   map[string]uintptr // MapName으로 등록된 심볼
	profile string
	lastErr string
}

// NewMinhook 독립 주입용 후킹 서비스 생성
// 호스트가 자체 디투어 서비스를 제공하지 않을 때 사용한다.
func NewMinhook() (*API, error) {
	if err := gominhook.Initialize(); err != nil {
		return nil, fmt.Errorf("minhook initialize: %w", err)
	}
	m := &minhook{names: make(map[string]uintptr)}
	return &API{
		Version:     m.version,
		LastError:   m.lastError,
		Profile:     m.setProfile,
		MapName:     m.mapName,
		FindAddress: m.findAddress,
		Detour:      m.detour,
		Apply:       m.apply,
	}, nil
}

func (m *minhook) version(api, major, patch *int, timestamp *string) {
	if api != nil {
		*api = minhookVersion[0]
	}
	if major != nil {
		*major = minhookVersion[1]
	}
	if patch != nil {
		*patch = minhookVersion[2]
	}
	if timestamp != nil {
		*timestamp = ""
	}
}

func (m *minhook) lastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *minhook) fail(format string, args ...interface{}) bool {
	m.mu.Lock()
	m.lastErr = fmt.Sprintf(format, args...)
	m.mu.Unlock()
	return false
}

func (m *minhook) setProfile(name string) bool {
	m.mu.Lock()
	m.profile = name
	m.mu.Unlock()
	return true
}

func (m *minhook) mapName(name string, address uintptr) bool {
	if name == "" || address == 0 {
		return m.fail("map name: empty name or nil address")
	}
	m.mu.Lock()
	m.names[name] = address
	m.mu.Unlock()
	return true
}

func (m *minhook) findAddress(module, export string, address *uintptr) bool {
	if address == nil {
		return m.fail("find address: nil output")
	}
	proc := windows.NewLazySystemDLL(module).NewProc(export)
	if err := proc.Find(); err != nil {
		return m.fail("find address %s@%s: %v", export, module, err)
	}
	*address = proc.Addr()
	return true
}

// resolve 심볼 이름을 주소로: MapName 테이블 우선, 아니면 "Export@module.dll" 해석
func (m *minhook) resolve(name string) (uintptr, bool) {
	m.mu.Lock()
	addr, ok := m.names[name]
	m.mu.Unlock()
	if ok {
		return addr, true
	}
	export, module, ok := strings.Cut(name, "@")
	if !ok {
		return 0, false
	}
	if !m.findAddress(module, export, &addr) {
		return 0, false
	}
	return addr, true
}

func (m *minhook) detour(name string, replacement uintptr, original *uintptr) bool {
	if original == nil {
		return m.fail("detour %s: nil original out", name)
	}
	target, ok := m.resolve(name)
	if !ok {
		return m.fail("detour %s: cannot resolve target", name)
	}
	err := gominhook.CreateHook(target, replacement, uintptr(unsafe.Pointer(original)))
	if err != nil {
		return m.fail("detour %s: %v", name, err)
	}
	return true
}

func (m *minhook) apply() bool {
	if err := gominhook.EnableHook(gominhook.AllHooks); err != nil {
		return m.fail("apply: %v", err)
	}
	return true
}
