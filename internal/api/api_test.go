package api

import (
	"strings"
	"testing"

	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/mode"
	"github.com/StopDragon/guihook/internal/render"
)

func newTestAPI() *API {
	m := mode.New()
	return New(m, render.New(m))
}

func TestVersionOptionalOuts(t *testing.T) {
	a := newTestAPI()

	var apiV, major, impl int
	var ts string
	a.Version(&apiV, &major, &impl, &ts)
	if apiV != APIVersion || major != MajorVersion || impl != ImplVersion {
		t.Errorf("version = (%d,%d,%d)", apiV, major, impl)
	}
	if ts == "" {
		t.Error("timestamp must never be empty")
	}

	// nil 인자는 전부 허용
	a.Version(nil, nil, nil, nil)
}

func TestEnableInputContract(t *testing.T) {
	a := newTestAPI()

	// 조회만: 초기 상태는 두 채널 모두 활성
	kb, ms := -1, -1
	a.EnableInput(&kb, &ms)
	if kb != 1 || ms != 1 {
		t.Errorf("report = (%d,%d), want (1,1)", kb, ms)
	}

	// 마우스만 끈다. 키보드는 영향받지 않는다
	kb, ms = -1, 0
	a.EnableInput(&kb, &ms)
	if kb != 1 || ms != 1 {
		t.Errorf("mouse disable returned (%d,%d), want previous (1,1)", kb, ms)
	}
	kb, ms = -1, -1
	a.EnableInput(&kb, &ms)
	if kb != 1 || ms != 0 {
		t.Errorf("report = (%d,%d), want (1,0)", kb, ms)
	}

	// nil인 채널은 건드리지 않는다
	kb = 0
	a.EnableInput(&kb, nil)
	if kb != 1 {
		t.Errorf("keyboard disable returned %d, want previous 1", kb)
	}

	// 마우스 재활성: 이전 값 (0,0)
	kb, ms = -1, 2
	a.EnableInput(&kb, &ms)
	if kb != 0 || ms != 0 {
		t.Errorf("mouse enable returned (%d,%d), want (0,0)", kb, ms)
	}
	kb, ms = -1, -1
	a.EnableInput(&kb, &ms)
	if kb != 0 || ms != 1 {
		t.Errorf("final report = (%d,%d), want (0,1)", kb, ms)
	}

	// 둘 다 nil이어도 안전
	a.EnableInput(nil, nil)
}

func TestRenderingMessagingExchange(t *testing.T) {
	a := newTestAPI()

	// 팬아웃은 셋업 전까지 꺼진 채로 시작한다
	if a.Rendering(nil) || a.Messaging(nil) {
		t.Fatal("fan-outs must start disabled")
	}
	on := true
	if a.Rendering(&on) {
		t.Error("rendering enable must return previous false")
	}
	if !a.Rendering(nil) {
		t.Error("rendering must stay enabled")
	}
	if a.Messaging(&on) {
		t.Error("messaging enable must return previous false")
	}
	off := false
	if !a.Messaging(&off) {
		t.Error("messaging disable must return previous true")
	}
	if a.Messaging(nil) {
		t.Error("messaging must be disabled again")
	}
}

func TestControlKeyContract(t *testing.T) {
	a := newTestAPI()

	if got := a.ControlKey(-1); got != mode.DefaultToggleKey {
		t.Errorf("read = %d, want %d", got, mode.DefaultToggleKey)
	}
	if got := a.ControlKey(58); got != mode.DefaultToggleKey {
		t.Errorf("set returned %d, want previous default", got)
	}
	if got := a.ControlKey(999); got != 58 {
		t.Errorf("out of range read = %d, want 58", got)
	}
}

func TestParameterUnknownSetsError(t *testing.T) {
	a := newTestAPI()

	var out uintptr
	if a.Parameter("ID3D12Device", &out) {
		t.Fatal("unknown parameter must fail")
	}
	var size uintptr
	a.LastError(&size, nil)
	if size <= 1 {
		t.Error("failure must leave a last error")
	}

	// 성공 진입점은 오류를 지운다
	if !a.Parameter("window", &out) {
		t.Fatal("known parameter must succeed")
	}
	a.LastError(&size, nil)
	if size != 1 {
		t.Error("success must clear the last error")
	}
}

func TestExecuteBuiltins(t *testing.T) {
	a := newTestAPI()

	out, ok := a.Execute("stats", "")
	if !ok || !strings.Contains(out, "session_id") {
		t.Errorf("stats = (%q, %v)", out, ok)
	}

	out, ok = a.Execute("commands", "")
	if !ok || !strings.Contains(out, "stats") {
		t.Errorf("commands = (%q, %v)", out, ok)
	}

	if _, ok := a.Execute("no-such-command", ""); ok {
		t.Error("unknown command must fail")
	}
}

func TestExecuteRegistered(t *testing.T) {
	a := newTestAPI()
	a.RegisterCommand("echo", func(arg string) (string, bool) { return arg, true })

	out, ok := a.Execute("echo", "hello")
	if !ok || out != "hello" {
		t.Errorf("echo = (%q, %v)", out, ok)
	}
}

func TestExecuteFailureLeavesError(t *testing.T) {
	a := newTestAPI()
	a.RegisterCommand("boom", func(string) (string, bool) { return "", false })

	if _, ok := a.Execute("boom", ""); ok {
		t.Fatal("boom must fail")
	}
	if lasterr.Text() == "" {
		t.Error("failed command must leave a last error")
	}
}
