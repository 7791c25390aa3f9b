// Package devhist 디바이스 생성 이력 레지스트리
//
// 가로챈 디바이스 생성 호출마다 관찰된 (스왑체인, 디바이스, 컨텍스트, 윈도우)
// 튜플을 순서대로 기록한다. 게임이 초기화 중에 버리는 프로브용 디바이스도
// 기록되므로, 실제 게임 윈도우와 일치하는 항목을 나중에 골라낸다.
package devhist

import "sync"

// Record 디바이스 생성 1회 관찰 결과
// 네 핸들 모두 외부 소유이며 이 패키지는 해제하지 않는다.
type Record struct {
	SwapChain uintptr
	Device    uintptr
	Context   uintptr
	Window    uintptr
}

// Complete 네 핸들이 모두 채워졌는지
func (r Record) Complete() bool {
	return r.SwapChain != 0 && r.Device != 0 && r.Context != 0 && r.Window != 0
}

// Registry 생성 순서 그대로 쌓이는 이력 (프로세스 수명 동안 제거 없음)
// 생성 훅은 게임의 백그라운드 스레드에서 불릴 수 있어 append와 조회를 잠근다.
type Registry struct {
	mu      sync.Mutex
	records []Record
}

// Record 완전한 튜플만 기록, 불완전하면 버린다 (에러 아님)
func (g *Registry) Record(r Record) bool {
	if !r.Complete() {
		return false
	}
	g.mu.Lock()
	g.records = append(g.records, r)
	g.mu.Unlock()
	return true
}

// SelectActive 두 윈도우 조회가 모두 가리키는 항목을 처음부터 스캔
// top은 프로세스의 보이는 최상위 윈도우, titled는 타이틀로 찾은 윈도우.
// 첫 일치 항목을 돌려준다. 일치가 없으면 ok=false.
func (g *Registry) SelectActive(top, titled uintptr) (Record, bool) {
	if top == 0 || titled == 0 {
		return Record{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.records {
		if r.Window == top && r.Window == titled && r.Complete() {
			return r, true
		}
	}
	return Record{}, false
}

// Len 기록된 튜플 수
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// Snapshot 진단용 복사본
func (g *Registry) Snapshot() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Record, len(g.records))
	copy(out, g.records)
	return out
}
