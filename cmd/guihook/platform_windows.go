//go:build windows

package main

import (
	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/host"
)

func attachPlatform(c *host.Context) {
	c.AttachPlatform()
}

func newHooksService() (*hooks.API, error) {
	return hooks.NewMinhook()
}
