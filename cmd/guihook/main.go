// guihook 게임 프로세스에 주입되는 c-shared 라이브러리
//
// 로더가 GuihookPluginLoad를 부르면 디투어와 수명 주기가 돌기 시작하고,
// 다른 플러그인은 Guihook* 익스포트나 버스로 방송되는 API로 접근한다.

package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/StopDragon/guihook/internal/api"
	"github.com/StopDragon/guihook/internal/bus"
	"github.com/StopDragon/guihook/internal/config"
	"github.com/StopDragon/guihook/internal/console"
	"github.com/StopDragon/guihook/internal/diag"
	"github.com/StopDragon/guihook/internal/host"
	"github.com/StopDragon/guihook/internal/hooks"
	"github.com/StopDragon/guihook/internal/lasterr"
	"github.com/StopDragon/guihook/internal/logger"
)

const VERSION = "1.4.0"

var (
	ctx        *host.Context
	loaderBus  *bus.Bus
	cTimestamp *C.char
)

//export GuihookPluginLoad
func GuihookPluginLoad() C.int {
	logger.Init()
	logger.Info("guihook v%s 로드", VERSION)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("설정 로드 실패: %v", err)
		cfg = config.Default()
	}
	if cfg.Console {
		console.Alloc()
	}

	loaderBus = bus.New()
	ctx = host.New(loaderBus, cfg)
	attachPlatform(ctx)
	ctx.Start()
	cTimestamp = C.CString(api.BuildTimestamp)

	loaderBus.Dispatch(bus.Message{Sender: host.LoaderName, Type: host.MsgPostLoad})

	// 독립 주입 모드: 호스트가 후킹 서비스를 따로 주지 않으므로 직접 띄운다
	h, err := newHooksService()
	if err != nil {
		logger.Error("후킹 서비스 초기화 실패: %v", err)
		return 0
	}
	loaderBus.Dispatch(bus.Message{
		Sender: host.HooksPluginName,
		Type:   hooks.APIVersion,
		Data:   h,
	})

	// 게임 윈도우는 메인 메뉴가 뜬 뒤에야 생긴다. 생길 때까지 폴링.
	go func() {
		for i := 0; i < 600; i++ {
			time.Sleep(500 * time.Millisecond)
			if ctx.TrySetup() {
				return
			}
		}
		logger.Error("게임 윈도우를 찾지 못함: %s", lasterr.Text())
	}()
	return 1
}

//export GuihookPluginUnload
func GuihookPluginUnload() {
	diag.Save()
	logger.Close()
}

//export GuihookVersion
func GuihookVersion(apiOut, majorOut, implOut *C.int, timestamp **C.char) {
	if ctx == nil {
		return
	}
	var a, m, i int
	ctx.API.Version(&a, &m, &i, nil)
	if apiOut != nil {
		*apiOut = C.int(a)
	}
	if majorOut != nil {
		*majorOut = C.int(m)
	}
	if implOut != nil {
		*implOut = C.int(i)
	}
	if timestamp != nil {
		*timestamp = cTimestamp
	}
}

//export GuihookLastError
func GuihookLastError(size *C.size_t, message *C.char) C.int {
	if size == nil {
		return 0
	}
	sz := uintptr(*size)
	var buf *byte
	if message != nil {
		buf = (*byte)(unsafe.Pointer(message))
	}
	ok := lasterr.Report(&sz, buf)
	*size = C.size_t(sz)
	if ok {
		return 1
	}
	return 0
}

//export GuihookEnableInput
func GuihookEnableInput(keyboard, mouse *C.int) {
	if ctx == nil {
		return
	}
	var kbPtr, msPtr *int
	var kb, ms int
	if keyboard != nil {
		kb = int(*keyboard)
		kbPtr = &kb
	}
	if mouse != nil {
		ms = int(*mouse)
		msPtr = &ms
	}
	ctx.API.EnableInput(kbPtr, msPtr)
	if keyboard != nil {
		*keyboard = C.int(kb)
	}
	if mouse != nil {
		*mouse = C.int(ms)
	}
}

//export GuihookRendering
func GuihookRendering(enable C.int) C.int {
	if ctx == nil {
		return 0
	}
	var opt *bool
	if enable >= 0 {
		v := enable > 0
		opt = &v
	}
	if ctx.API.Rendering(opt) {
		return 1
	}
	return 0
}

//export GuihookMessaging
func GuihookMessaging(enable C.int) C.int {
	if ctx == nil {
		return 0
	}
	var opt *bool
	if enable >= 0 {
		v := enable > 0
		opt = &v
	}
	if ctx.API.Messaging(opt) {
		return 1
	}
	return 0
}

//export GuihookClipCursor
func GuihookClipCursor(confine C.int) C.int {
	if ctx == nil {
		return 0
	}
	if ctx.ClipCursor(confine != 0) {
		return 1
	}
	return 0
}

//export GuihookControlKey
func GuihookControlKey(dik C.int) C.int {
	if ctx == nil {
		return 0
	}
	return C.int(ctx.API.ControlKey(int(dik)))
}

//export GuihookRenderListener
func GuihookRenderListener(callback C.uintptr_t, remove C.int) C.int {
	if ctx == nil {
		return 0
	}
	if ctx.API.RenderListener(uintptr(callback), remove != 0) {
		return 1
	}
	return 0
}

//export GuihookMessageListener
func GuihookMessageListener(callback C.uintptr_t, remove C.int) C.int {
	if ctx == nil {
		return 0
	}
	if ctx.API.MessageListener(uintptr(callback), remove != 0) {
		return 1
	}
	return 0
}

//export GuihookControlListener
func GuihookControlListener(callback C.uintptr_t, remove C.int) C.int {
	if ctx == nil {
		return 0
	}
	if ctx.API.ControlListener(uintptr(callback), remove != 0) {
		return 1
	}
	return 0
}

//export GuihookParameter
func GuihookParameter(name *C.char, out *C.uintptr_t) C.int {
	if ctx == nil || name == nil || out == nil {
		return 0
	}
	var v uintptr
	if !ctx.API.Parameter(C.GoString(name), &v) {
		return 0
	}
	*out = C.uintptr_t(v)
	return 1
}

//export GuihookExecute
func GuihookExecute(command, arg *C.char, out *C.char, outSize C.size_t) C.int {
	if ctx == nil || command == nil {
		return 0
	}
	argStr := ""
	if arg != nil {
		argStr = C.GoString(arg)
	}
	result, ok := ctx.API.Execute(C.GoString(command), argStr)
	if !ok {
		return 0
	}
	if out != nil && outSize > 0 {
		n := len(result)
		if n > int(outSize)-1 {
			n = int(outSize) - 1
		}
		dst := unsafe.Slice((*byte)(unsafe.Pointer(out)), n+1)
		copy(dst, result[:n])
		dst[n] = 0
	}
	return 1
}

// c-shared 빌드에서 main은 불리지 않는다
func main() {}
