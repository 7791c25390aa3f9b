// Package host 로더 수명 주기 통합
//
// 로더가 버스로 보내는 통지에 맞춰 디투어 설치와 윈도우 셋업을 진행하고,
// 준비가 끝나면 자신의 API를 버스에 방송한다. 플랫폼 글루(DirectInput
// 설치, 윈도우 탐색, 커서 가두기)는 주입 지점으로 받아서 이 패키지는
// 어디서든 컴파일된다.
package host

import (
	"sync"

	"github.com/StopDragon/guihook/internal/api"
	"github.com/StopDragon/guihook/internal/bus"
	"github.com/StopDragon/guihook/internal/config"
	"github.com/StopDragon/guihook/internal/console"
	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/logger"
	"github.com/StopDragon/guihook/internal/mode"
	"github.com/StopDragon/guihook/internal/render"
)

const (
	PluginName      = "guihook"
	LoaderName      = "loader"
	HooksPluginName = "hooks"
)

// 로더 메시지 타입
const (
	MsgPostLoad uint32 = iota + 1
	MsgPostPostLoad
	MsgInputLoaded
	MsgDataLoaded
)

// MsgAPIReady guihook가 준비를 마치고 API(*api.API)를 방송할 때.
// 타입 값은 API 버전이라서 수신 측이 구독만으로 버전을 확인한다.
// 로더 메시지와 값이 겹쳐도 발신자가 다르므로 충돌하지 않는다.
const MsgAPIReady uint32 = api.APIVersion

// Context 플러그인 전역 상태
type Context struct {
	Bus    *bus.Bus
	Mode   *mode.Controller
	Render *render.Controller
	API    *api.API
	Config *config.Config

	// 플랫폼 주입 지점. windows 글루가 채우고 테스트는 대체한다.
	InstallDInput func(*hooks.API) bool
	SetupWindow   func() bool
	ConfineCursor func(confine bool) bool

	mu        sync.Mutex
	haveHooks bool
	ready     bool
}

// New 설정이 적용된 컨텍스트
func New(b *bus.Bus, cfg *config.Config) *Context {
	m := mode.New()
	if cfg.ToggleKey >= 0 && cfg.ToggleKey < 256 {
		k := uint32(cfg.ToggleKey)
		m.ToggleKey(&k)
	}
	r := render.New(m)
	c := &Context{
		Bus:    b,
		Mode:   m,
		Render: r,
		API:    api.New(m, r),
		Config: cfg,
	}
	// 입력 채널이 꺼지면(GUI 활성) 커서를 풀고, 켜지면 게임 윈도우에 가둔다
	m.SetChangeFunc(func(keyboardEnabled, mouseEnabled bool) {
		if c.ConfineCursor != nil {
			c.ConfineCursor(mouseEnabled)
		}
	})
	c.API.RegisterCommand("console", func(string) (string, bool) {
		if err := console.Alloc(); err != nil {
			lasterr.Set("콘솔 할당 실패: %v", err)
			return "", false
		}
		return "콘솔 연결됨", true
	})
	c.API.RegisterCommand("clipcursor", func(arg string) (string, bool) {
		confine := arg != "0" && arg != "off"
		if !c.ClipCursor(confine) {
			return "", false
		}
		if confine {
			return "커서 가둠", true
		}
		return "커서 해제", true
	})
	return c
}

// ClipCursor 커서를 게임 윈도우 영역에 가두거나 푼다
func (c *Context) ClipCursor(confine bool) bool {
	lasterr.Clear()
	if c.ConfineCursor == nil {
		lasterr.Set("커서 제어 미지원 플랫폼")
		return false
	}
	if !c.ConfineCursor(confine) {
		if lasterr.Text() == "" {
			lasterr.Set("커서 영역 설정 실패")
		}
		return false
	}
	return true
}

// Start 로더/후킹 서비스 메시지 구독
func (c *Context) Start() {
	c.Bus.Subscribe(LoaderName, c.onLoaderMessage)
	c.Bus.Subscribe(HooksPluginName, c.onHooksMessage)
}

func (c *Context) onLoaderMessage(m bus.Message) {
	switch m.Type {
	case MsgPostLoad:
		logger.Debug("로더: post-load")
	case MsgInputLoaded:
		logger.Debug("로더: input-loaded")
		if !c.TrySetup() {
			logger.Error("윈도우 셋업 실패: %s", lasterr.Text())
		}
	}
}

// onHooksMessage 후킹 서비스 수신
// 버전이 다르면 통합하지 않는다. 맞으면 디바이스 생성과 DirectInput
// 디투어를 즉시 설치해 게임의 첫 생성 호출을 놓치지 않는다.
func (c *Context) onHooksMessage(m bus.Message) {
	h, ok := m.Data.(*hooks.API)
	if !ok || h == nil {
		return
	}
	if m.Type != hooks.APIVersion {
		lasterr.Set("후킹 서비스 버전 불일치: got=%d want=%d", m.Type, hooks.APIVersion)
		logger.Error("%s", lasterr.Text())
		return
	}
	if !h.Valid() {
		lasterr.Set("후킹 서비스 함수 누락")
		logger.Error("%s", lasterr.Text())
		return
	}

	c.mu.Lock()
	if c.haveHooks {
		c.mu.Unlock()
		return
	}
	c.haveHooks = true
	c.mu.Unlock()

	if !c.Render.InstallDeviceHook(h) {
		logger.Error("디바이스 훅 설치 실패: %s", lasterr.Text())
		return
	}
	if c.InstallDInput != nil && !c.InstallDInput(h) {
		logger.Error("DirectInput 훅 설치 실패: %s", lasterr.Text())
	}
}

// TrySetup 게임 윈도우 확정 시도 (멱등)
// 성공하면 설정에 따라 팬아웃을 켜고 API를 방송한다.
func (c *Context) TrySetup() bool {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	if c.SetupWindow == nil || !c.SetupWindow() {
		return false
	}

	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return true
	}
	c.ready = true
	c.mu.Unlock()

	if c.Config.EnableRendering {
		on := true
		c.Mode.Rendering(&on)
	}
	if c.Config.EnableMessaging {
		on := true
		c.Mode.Messaging(&on)
	}
	c.Bus.Dispatch(bus.Message{Sender: PluginName, Type: MsgAPIReady, Data: c.API})
	logger.Info("guihook 준비 완료")
	return true
}

// Ready 셋업 완료 여부
func (c *Context) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}
