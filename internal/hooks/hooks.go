// Package hooks 디투어 프리미티브 인터페이스
//
// 함수 포인터 구조체 형태의 후킹 서비스 계약. 호스트 메시지 버스로 전달받거나
// (minhook_windows.go의) 자체 구현을 쓴다. 모든 호출은 성공 여부를 bool로
// 돌려주고 실패 사유는 LastError로 조회한다.
package hooks

// APIVersion 컴파일 시점 버전. 버스로 전달된 구조체의 버전과 다르면 통합 중단.
const APIVersion = 1

// API 후킹 서비스 함수 묶음
type API struct {
	// Version 런타임 버전 조회 (인자는 모두 선택적)
	Version func(api, major, patch *int, timestamp *string)
	// LastError 마지막 실패 사유
	LastError func() string
	// Profile 관련 패치를 묶는 프로파일 선택/생성
	Profile func(name string) bool
	// MapName 심볼 이름을 주소에 매핑 (이후 Detour에서 이름으로 참조 가능)
	MapName func(name string, address uintptr) bool
	// FindAddress 모듈 익스포트 주소 조회
	FindAddress func(module, export string, address *uintptr) bool
	// Detour 이름("Export@module.dll" 또는 MapName된 심볼)을 replacement로 우회시키고
	// 원본 진입점을 original에 돌려준다. Apply 전까지는 대기 상태.
	Detour func(name string, replacement uintptr, original *uintptr) bool
	// Apply 대기 중인 디투어 일괄 커밋
	Apply func() bool
}

// Valid 필수 함수가 모두 채워졌는지
func (a *API) Valid() bool {
	return a != nil && a.Profile != nil && a.Detour != nil && a.Apply != nil &&
		a.MapName != nil && a.LastError != nil
}
