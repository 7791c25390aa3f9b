// Package bus 호스트/플러그인 간 인프로세스 메시지 버스
//
// 로더가 보내는 수명 주기 통지와 플러그인끼리 주고받는 서비스 전달을
// 하나의 발신자 기준 구독 모델로 처리한다.
package bus

import "sync"

// Message 버스 메시지. Data의 소유권은 발신자에 남는다.
type Message struct {
	Sender string
	Type   uint32
	Data   interface{}
}

// Handler 메시지 수신 함수. Dispatch 고루틴에서 동기로 불린다.
type Handler func(Message)

// Bus 발신자 이름으로 구독하는 버스. 빈 발신자 구독은 전체 수신.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

// New 빈 버스
func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe sender가 보낸 메시지 구독 (""는 모든 발신자)
func (b *Bus) Subscribe(sender string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[sender] = append(b.handlers[sender], h)
	b.mu.Unlock()
}

// Dispatch 메시지 전달, 호출된 핸들러 수 반환
// 핸들러 목록은 스냅샷으로 돌므로 핸들러 안에서 Subscribe해도 안전하다.
func (b *Bus) Dispatch(m Message) int {
	b.mu.Lock()
	targets := make([]Handler, 0, len(b.handlers[m.Sender])+len(b.handlers[""]))
	targets = append(targets, b.handlers[m.Sender]...)
	if m.Sender != "" {
		targets = append(targets, b.handlers[""]...)
	}
	b.mu.Unlock()

	for _, h := range targets {
		h(m)
	}
	return len(targets)
}
