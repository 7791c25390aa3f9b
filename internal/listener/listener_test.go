package listener

import "testing"

func TestAddDeduplicates(t *testing.T) {
	var s Set
	if !s.Add(0x100) {
		t.Fatal("first add should succeed")
	}
	if s.Add(0x100) {
		t.Error("duplicate add should be rejected")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestAddZeroRejected(t *testing.T) {
	var s Set
	if s.Add(0) {
		t.Error("zero pointer should be rejected")
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	var s Set
	s.Add(0x100)
	if s.Remove(0x200) {
		t.Error("removing unregistered pointer should report false")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestEachOrder(t *testing.T) {
	var s Set
	want := []uintptr{0x10, 0x20, 0x30, 0x40}
	for _, p := range want {
		s.Add(p)
	}
	s.Add(0x20) // 중복 등록은 순서를 바꾸지 않는다

	var got []uintptr
	s.Each(func(p uintptr) { got = append(got, p) })

	if len(got) != len(want) {
		t.Fatalf("broadcast count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestMutateWhileIterating(t *testing.T) {
	var s Set
	s.Add(0x10)
	s.Add(0x20)

	var seen int
	s.Each(func(p uintptr) {
		seen++
		s.Remove(0x20)
		s.Add(0x30)
	})
	// 순회는 스냅샷 기준: 원래 두 항목만 방문
	if seen != 2 {
		t.Errorf("visited %d listeners, want 2", seen)
	}
	if s.Len() != 2 { // 0x10, 0x30
		t.Errorf("len after mutation = %d, want 2", s.Len())
	}
}

func TestUpdate(t *testing.T) {
	var s Set
	s.Update(0x10, false)
	s.Update(0x10, false)
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
	s.Update(0x10, true)
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}
