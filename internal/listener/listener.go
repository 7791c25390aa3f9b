package listener

import "sync"

// Set 콜백 포인터 목록 (등록 순서 유지)
// 외부 플러그인이 등록하는 함수 포인터를 uintptr로 보관한다.
// 같은 포인터는 한 번만 등록되고, 포인터가 가리키는 코드의 유효성은 호출자 책임.
type Set struct {
	mu    sync.Mutex
	items []uintptr
}

// Add 리스너 추가 (이미 있으면 무시)
func (s *Set) Add(p uintptr) bool {
	if p == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.items {
		if q == p {
			return false
		}
	}
	s.items = append(s.items, p)
	return true
}

// Remove 리스너 제거 (없으면 no-op)
func (s *Set) Remove(p uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.items {
		if q == p {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Update 추가 또는 제거 (remove 플래그 기준)
func (s *Set) Update(p uintptr, remove bool) bool {
	if remove {
		return s.Remove(p)
	}
	return s.Add(p)
}

// Each 등록 순서대로 순회
// 스냅샷을 떠서 순회하므로 콜백 안에서 Add/Remove를 호출해도 안전하다.
func (s *Set) Each(f func(uintptr)) {
	s.mu.Lock()
	snapshot := make([]uintptr, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	for _, p := range snapshot {
		f(p)
	}
}

// Len 등록된 리스너 수
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
