//go:build !windows

package main

import (
	"errors"

	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/host"
)

func attachPlatform(c *host.Context) {}

func newHooksService() (*hooks.API, error) {
	return nil, errors.New("windows 전용")
}
