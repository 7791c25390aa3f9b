package devhist

import (
	"sync"
	"testing"
)

func full(w uintptr) Record {
	return Record{SwapChain: 0x1000 + w, Device: 0x2000 + w, Context: 0x3000 + w, Window: w}
}

func TestIncompleteNeverRecorded(t *testing.T) {
	var g Registry
	cases := []Record{
		{},
		{SwapChain: 1, Device: 2, Context: 3}, // 윈도우 없음
		{SwapChain: 1, Device: 2, Window: 4},  // 컨텍스트 없음
		{SwapChain: 1, Context: 3, Window: 4}, // 디바이스 없음
		{Device: 2, Context: 3, Window: 4},    // 체인 없음
	}
	for i, r := range cases {
		before := g.Len()
		if g.Record(r) {
			t.Errorf("case %d: incomplete record accepted", i)
		}
		if g.Len() != before {
			t.Errorf("case %d: history grew on incomplete tuple", i)
		}
	}
}

func TestSelectFirstMatch(t *testing.T) {
	var g Registry
	a := full(0xA)
	b1 := full(0xB)
	b2 := Record{SwapChain: 0x9999, Device: 0x8888, Context: 0x7777, Window: 0xB}
	g.Record(a)
	g.Record(b1)
	g.Record(b2)

	got, ok := g.SelectActive(0xB, 0xB)
	if !ok {
		t.Fatal("expected a match for window B")
	}
	if got != b1 {
		t.Errorf("selected %+v, want first B record %+v", got, b1)
	}
}

func TestSelectRequiresBothWindows(t *testing.T) {
	var g Registry
	g.Record(full(0xA))

	if _, ok := g.SelectActive(0xA, 0xB); ok {
		t.Error("windows disagree, selection must fail")
	}
	if _, ok := g.SelectActive(0, 0xA); ok {
		t.Error("nil top window, selection must fail")
	}
	if _, ok := g.SelectActive(0xA, 0); ok {
		t.Error("nil titled window, selection must fail")
	}
}

func TestSelectNotFound(t *testing.T) {
	var g Registry
	if _, ok := g.SelectActive(0xA, 0xA); ok {
		t.Error("empty history must not select")
	}
	g.Record(full(0xA))
	if _, ok := g.SelectActive(0xC, 0xC); ok {
		t.Error("no record for window C")
	}
}

func TestConcurrentAppend(t *testing.T) {
	var g Registry
	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(w uintptr) {
			defer wg.Done()
			g.Record(full(w))
		}(uintptr(i))
	}
	wg.Wait()
	if g.Len() != 32 {
		t.Errorf("len = %d, want 32", g.Len())
	}
}
