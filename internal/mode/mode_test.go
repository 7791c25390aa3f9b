package mode

import "testing"

// feed 토글 키 샘플 시퀀스 공급 (true=눌림)
func feed(c *Controller, key uint32, samples ...bool) {
	for _, down := range samples {
		var keys [256]byte
		if down {
			keys[key] = 0x80
		}
		c.ObserveKeys(&keys)
	}
}

func TestToggleEdgeDownDownUp(t *testing.T) {
	c := New()
	flips := 0
	c.UpdateListener(0x10, false)
	old := notifyChange
	notifyChange = func(cb uintptr, kb, ms bool) { flips++ }
	defer func() { notifyChange = old }()

	feed(c, DefaultToggleKey, true, true, false)
	if flips != 1 {
		t.Errorf("flips = %d, want 1", flips)
	}
	if c.KeyboardEnabled() || c.MouseEnabled() {
		t.Error("both channels should be disabled after one flip")
	}
}

func TestToggleEdgeNoKeyNoFlip(t *testing.T) {
	c := New()
	feed(c, DefaultToggleKey, false, false)
	if !c.KeyboardEnabled() || !c.MouseEnabled() {
		t.Error("up,up must not flip")
	}
}

func TestToggleEdgeTwoCycles(t *testing.T) {
	c := New()
	flips := 0
	c.UpdateListener(0x10, false)
	old := notifyChange
	notifyChange = func(cb uintptr, kb, ms bool) { flips++ }
	defer func() { notifyChange = old }()

	feed(c, DefaultToggleKey, true, false, true, false)
	if flips != 2 {
		t.Errorf("flips = %d, want 2", flips)
	}
	// 두 번 뒤집혔으니 원상 복구
	if !c.KeyboardEnabled() || !c.MouseEnabled() {
		t.Error("two flips should restore the enabled state")
	}
}

func TestToggleKeyExchange(t *testing.T) {
	c := New()
	if got := c.ToggleKey(nil); got != DefaultToggleKey {
		t.Errorf("read = %d, want %d", got, DefaultToggleKey)
	}
	nk := uint32(58) // DIK_CAPITAL
	if got := c.ToggleKey(&nk); got != DefaultToggleKey {
		t.Errorf("set returned %d, want previous %d", got, DefaultToggleKey)
	}
	if got := c.ToggleKey(nil); got != 58 {
		t.Errorf("read = %d, want 58", got)
	}
	bad := uint32(999)
	if got := c.ToggleKey(&bad); got != 58 {
		t.Errorf("out of range set returned %d, want 58", got)
	}
	if got := c.ToggleKey(nil); got != 58 {
		t.Error("out of range value must not be stored")
	}
}

func TestRenderingExchangeContract(t *testing.T) {
	c := New()
	on := true
	if prev := c.Rendering(&on); prev {
		t.Error("initial rendering state should be false")
	}
	// 같은 값으로 다시 설정하면 그 값이 그대로 돌아온다
	if prev := c.Rendering(&on); !prev {
		t.Error("second set should return true")
	}
	// 값 없이 호출하면 변경 없이 현재 값
	if cur := c.Rendering(nil); !cur {
		t.Error("pure read should report true")
	}
	if cur := c.Rendering(nil); !cur {
		t.Error("pure read must not change state")
	}
}

func TestEnableInputReportsOldValues(t *testing.T) {
	c := New()
	off := false
	oldKb, oldMs := c.EnableInput(&off, nil)
	if !oldKb || !oldMs {
		t.Error("initial state should be enabled/enabled")
	}
	oldKb, oldMs = c.EnableInput(nil, nil)
	if oldKb || !oldMs {
		t.Errorf("read = (%v,%v), want (false,true)", oldKb, oldMs)
	}
}

type fakeDevice struct{ calls []bool }

func (f *fakeDevice) ReapplyCooperative(exclusive bool) { f.calls = append(f.calls, exclusive) }

func TestInputChangeReappliesCooperativeLevel(t *testing.T) {
	c := New()
	kb := &fakeDevice{}
	ms := &fakeDevice{}
	c.SetKeyboardDevice(kb)
	c.SetMouseDevice(ms)

	off := false
	c.EnableInput(&off, &off)
	if len(kb.calls) != 1 || kb.calls[0] {
		t.Errorf("keyboard reapply = %v, want [false]", kb.calls)
	}
	if len(ms.calls) != 1 || ms.calls[0] {
		t.Errorf("mouse reapply = %v, want [false]", ms.calls)
	}

	// 변화가 없으면 재적용도 없다
	c.EnableInput(&off, &off)
	if len(kb.calls) != 1 {
		t.Errorf("no-op set must not reapply, calls = %v", kb.calls)
	}

	on := true
	c.EnableInput(&on, &on)
	if len(kb.calls) != 2 || !kb.calls[1] {
		t.Errorf("keyboard reapply = %v, want exclusive restore", kb.calls)
	}
}

func TestModeListenerReceivesNewState(t *testing.T) {
	c := New()
	type note struct{ kb, ms bool }
	var notes []note
	old := notifyChange
	notifyChange = func(cb uintptr, kb, ms bool) { notes = append(notes, note{kb, ms}) }
	defer func() { notifyChange = old }()

	c.UpdateListener(0x10, false)
	c.UpdateListener(0x20, false)

	feed(c, DefaultToggleKey, true, false)
	if len(notes) != 2 {
		t.Fatalf("notified %d listeners, want 2", len(notes))
	}
	for i, n := range notes {
		if n.kb || n.ms {
			t.Errorf("note %d = %+v, want disabled state", i, n)
		}
	}
}
