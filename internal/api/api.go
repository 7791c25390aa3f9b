// Package api 외부 플러그인에 노출되는 호출 계약
//
// C 경계(cmd/guihook의 익스포트)와 버스로 전달되는 함수 묶음이 모두 이
// 패키지를 거친다. 모든 진입점은 마지막 오류를 지우고 시작하며, 실패 시
// lasterr에 사유를 남긴다.
package api

import (
	"sort"
	"sync"

	"github.com/StopDragon/guihook/internal/diag"
	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/mode"
	"github.com/StopDragon/guihook/internal/render"
)

// 버전 번호. API는 호출 계약, Major는 기능 세대, Impl은 구현 수정 번호.
const (
	APIVersion   = 1
	MajorVersion = 1
	ImplVersion  = 4
)

// BuildTimestamp 링크 시점에 -ldflags로 채운다. 비면 "unknown".
var BuildTimestamp = "unknown"

// Command Execute로 실행되는 확장 명령
type Command func(arg string) (string, bool)

// API 노출 기능 묶음
type API struct {
	Mode   *mode.Controller
	Render *render.Controller

	cmdMu    sync.Mutex
	commands map[string]Command
}

// New 연결된 API
func New(m *mode.Controller, r *render.Controller) *API {
	a := &API{Mode: m, Render: r, commands: make(map[string]Command)}
	a.RegisterCommand("stats", func(string) (string, bool) {
		return diag.Text(), true
	})
	a.RegisterCommand("commands", func(string) (string, bool) {
		return a.commandList(), true
	})
	return a
}

// Version 버전 조회. 인자는 전부 선택적이다.
func (a *API) Version(apiOut, majorOut, implOut *int, timestamp *string) {
	lasterr.Clear()
	if apiOut != nil {
		*apiOut = APIVersion
	}
	if majorOut != nil {
		*majorOut = MajorVersion
	}
	if implOut != nil {
		*implOut = ImplVersion
	}
	if timestamp != nil {
		*timestamp = BuildTimestamp
	}
}

// LastError 2단계(크기→본문) 오류 조회. 오류를 지우지 않는다.
func (a *API) LastError(size *uintptr, message *byte) bool {
	return lasterr.Report(size, message)
}

// EnableInput 채널별 입력 제어. 각 포인터는 입력 겸 출력이다.
// nil이면 해당 채널 무시, >0 활성, ==0 비활성, <0 조회만.
// 호출 후 포인터에는 이전 값(0/1)이 들어 있다.
func (a *API) EnableInput(keyboard, mouse *int) {
	lasterr.Clear()
	var kbOpt, msOpt *bool
	if keyboard != nil && *keyboard >= 0 {
		v := *keyboard > 0
		kbOpt = &v
	}
	if mouse != nil && *mouse >= 0 {
		v := *mouse > 0
		msOpt = &v
	}
	oldKeyboard, oldMouse := a.Mode.EnableInput(kbOpt, msOpt)
	if keyboard != nil {
		*keyboard = boolInt(oldKeyboard)
	}
	if mouse != nil {
		*mouse = boolInt(oldMouse)
	}
}

// Rendering 렌더 팬아웃 제어 (nil이면 조회, 이전 값 반환)
func (a *API) Rendering(opt *bool) bool {
	lasterr.Clear()
	return a.Mode.Rendering(opt)
}

// Messaging 메시지 팬아웃 제어 (nil이면 조회, 이전 값 반환)
func (a *API) Messaging(opt *bool) bool {
	lasterr.Clear()
	return a.Mode.Messaging(opt)
}

// ControlKey 토글 스캔 코드. 0..255면 설정, 밖이면 조회. 이전 값 반환.
func (a *API) ControlKey(dik int) int {
	lasterr.Clear()
	if dik >= 0 && dik < 256 {
		v := uint32(dik)
		return int(a.Mode.ToggleKey(&v))
	}
	return int(a.Mode.ToggleKey(nil))
}

// RenderListener 렌더 리스너 등록/제거
func (a *API) RenderListener(cb uintptr, remove bool) bool {
	lasterr.Clear()
	if !a.Render.UpdateRenderListener(cb, remove) {
		lasterr.Set("렌더 리스너 갱신 실패: cb=%#x remove=%v", cb, remove)
		return false
	}
	return true
}

// MessageListener 윈도우 메시지 리스너 등록/제거
func (a *API) MessageListener(cb uintptr, remove bool) bool {
	lasterr.Clear()
	if !a.Render.UpdateMessageListener(cb, remove) {
		lasterr.Set("메시지 리스너 갱신 실패: cb=%#x remove=%v", cb, remove)
		return false
	}
	return true
}

// ControlListener 입력 모드 변경 리스너 등록/제거
func (a *API) ControlListener(cb uintptr, remove bool) bool {
	lasterr.Clear()
	if !a.Mode.UpdateListener(cb, remove) {
		lasterr.Set("모드 리스너 갱신 실패: cb=%#x remove=%v", cb, remove)
		return false
	}
	return true
}

// Parameter 이름으로 렌더 바인딩 핸들 조회
func (a *API) Parameter(name string, out *uintptr) bool {
	lasterr.Clear()
	if out == nil {
		lasterr.Set("파라미터 출력 포인터 없음")
		return false
	}
	v, ok := a.Render.Parameter(name)
	if !ok {
		lasterr.Set("알 수 없는 파라미터: %q", name)
		return false
	}
	*out = v
	return true
}

// RegisterCommand Execute 명령 등록
func (a *API) RegisterCommand(name string, cmd Command) {
	if name == "" || cmd == nil {
		return
	}
	a.cmdMu.Lock()
	a.commands[name] = cmd
	a.cmdMu.Unlock()
}

// Execute 이름으로 확장 명령 실행
func (a *API) Execute(name, arg string) (string, bool) {
	lasterr.Clear()
	a.cmdMu.Lock()
	cmd := a.commands[name]
	a.cmdMu.Unlock()
	if cmd == nil {
		lasterr.Set("알 수 없는 명령: %q", name)
		return "", false
	}
	out, ok := cmd(arg)
	if !ok && lasterr.Text() == "" {
		lasterr.Set("명령 실패: %q", name)
	}
	return out, ok
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (a *API) commandList() string {
	a.cmdMu.Lock()
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	a.cmdMu.Unlock()
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += "\n"
		}
		out += name
	}
	return out
}
