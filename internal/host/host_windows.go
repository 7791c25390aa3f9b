//go:build windows

package host

import "github.com/StopDragon/guihook/internal/dinput"

// AttachPlatform Win32 글루 연결
// Start 전에 불러야 한다. 디투어 진입점을 만들고 주입 지점을 채운다.
func (c *Context) AttachPlatform() {
	c.Render.InstallThunks()
	mgr := dinput.NewManager(c.Mode)
	c.InstallDInput = mgr.Install
	c.SetupWindow = func() bool {
		return c.Render.SetupFromDesktop(c.Config.WindowTitle)
	}
	c.ConfineCursor = c.Render.ConfineCursor
}
