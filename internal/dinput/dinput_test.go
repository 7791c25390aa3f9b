package dinput

import (
	"bytes"
	"testing"
	"unsafe"
)

func TestCooperativeFlagsSwap(t *testing.T) {
	remembered := uint32(disclExclusive | disclForeground)
	if got := cooperativeFlags(remembered, false); got != disclNonexclusive|disclForeground {
		t.Errorf("disabled: flags = %#x, want nonexclusive|foreground", got)
	}
	if got := cooperativeFlags(remembered, true); got != disclExclusive|disclForeground {
		t.Errorf("enabled: flags = %#x, want exclusive|foreground", got)
	}
}

func TestCooperativeFlagsNormalizesBothBits(t *testing.T) {
	both := uint32(disclExclusive | disclNonexclusive | disclBackground)
	if got := cooperativeFlags(both, true); got != disclExclusive|disclBackground {
		t.Errorf("flags = %#x, want exclusive|background", got)
	}
}

func TestMaskStateDisabledZeroes(t *testing.T) {
	buf := []byte{1, 2, 3, 0x80}
	maskState(buf, true)
	if !bytes.Equal(buf, []byte{1, 2, 3, 0x80}) {
		t.Error("enabled channel must keep the real state")
	}
	maskState(buf, false)
	if !bytes.Equal(buf, make([]byte, 4)) {
		t.Errorf("disabled channel must read all zeroes, got %v", buf)
	}
}

func TestDrainRequestIsDestructive(t *testing.T) {
	buf, count, flags := drainRequest()
	if buf != 0 {
		t.Errorf("drain buffer = %#x, want null", buf)
	}
	if count != drainAll {
		t.Errorf("drain count = %#x, want INFINITE", count)
	}
	// PEEK이 섞여 들어가면 큐가 비워지지 않고 재활성 시 묵은 이벤트가 쏟아진다
	if flags&digddPeek != 0 || flags != 0 {
		t.Errorf("drain flags = %#x, want 0", flags)
	}
}

func TestMouseStateLayout(t *testing.T) {
	var s MouseState
	if unsafe.Sizeof(s) != 20 {
		t.Errorf("MouseState size = %d, want 20", unsafe.Sizeof(s))
	}
	if unsafe.Offsetof(s.Buttons) != 12 {
		t.Errorf("Buttons offset = %d, want 12", unsafe.Offsetof(s.Buttons))
	}
}

func TestObjectDataLayout(t *testing.T) {
	var d ObjectData
	want := uintptr(16) + unsafe.Sizeof(uintptr(0))
	if unsafe.Sizeof(d) != want {
		t.Errorf("ObjectData size = %d, want %d", unsafe.Sizeof(d), want)
	}
	if unsafe.Offsetof(d.AppData) != 16 {
		t.Errorf("AppData offset = %d, want 16", unsafe.Offsetof(d.AppData))
	}
}
