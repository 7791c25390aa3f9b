// Package diag 세션 진단 통계
//
// 후킹 경로에서 일어나는 이벤트(프레임, 메시지, 폴링, 토글)를 집계하고
// 실행 파일 옆 상태 파일에 주기적으로 남긴다. 핫 패스에서 호출되므로
// 카운터는 전부 원자 연산이다.
package diag

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	stateFile = ".guihook_stats.json"
	schemaVer = 1
	// saveInterval 프레임 경로에서 상태 파일을 다시 쓰는 최소 간격
	saveInterval = 3 * time.Minute
)

// Stats 세션 집계
type Stats struct {
	SchemaVersion     int    `json:"schema_version"`
	SessionID         string `json:"session_id"`
	SessionStart      int64  `json:"session_start"`
	SessionDuration   int    `json:"session_duration_sec"`
	FramesPresented   int64  `json:"frames_presented"`
	FramesFannedOut   int64  `json:"frames_fanned_out"`
	MessagesSeen      int64  `json:"messages_seen"`
	MessagesSwallowed int64  `json:"messages_swallowed"`
	KeyboardPolls     int64  `json:"keyboard_polls"`
	MousePolls        int64  `json:"mouse_polls"`
	DevicesRecorded   int64  `json:"devices_recorded"`
	ToggleFlips       int64  `json:"toggle_flips"`
}

var (
	sessionID    string
	sessionStart time.Time

	framesPresented   atomic.Int64
	framesFannedOut   atomic.Int64
	messagesSeen      atomic.Int64
	messagesSwallowed atomic.Int64
	keyboardPolls     atomic.Int64
	mousePolls        atomic.Int64
	devicesRecorded   atomic.Int64
	toggleFlips       atomic.Int64

	saveMu   sync.Mutex
	lastSave time.Time
)

func init() {
	sessionID = uuid.New().String()
	sessionStart = time.Now()
}

// FramePresented 프레임 원본 전달 1회
func FramePresented() { framesPresented.Add(1) }

// FrameFannedOut 렌더 리스너 팬아웃이 일어난 프레임 1회
func FrameFannedOut() { framesFannedOut.Add(1) }

// MessageSeen 가로챈 윈도우 메시지 1건
func MessageSeen() { messagesSeen.Add(1) }

// MessageSwallowed 게임에 전달하지 않은 메시지 1건
func MessageSwallowed() { messagesSwallowed.Add(1) }

// KeyboardPolled 키보드 상태 폴링 1회
func KeyboardPolled() { keyboardPolls.Add(1) }

// MousePolled 마우스 상태 폴링 1회
func MousePolled() { mousePolls.Add(1) }

// DeviceRecorded 디바이스 생성 기록 1건
func DeviceRecorded() { devicesRecorded.Add(1) }

// ToggleFlipped 토글 키로 입력 채널이 뒤집힌 횟수
func ToggleFlipped() { toggleFlips.Add(1) }

// Snapshot 현재 집계 복사본
func Snapshot() Stats {
	return Stats{
		SchemaVersion:     schemaVer,
		SessionID:         sessionID,
		SessionStart:      sessionStart.Unix(),
		SessionDuration:   int(time.Since(sessionStart).Seconds()),
		FramesPresented:   framesPresented.Load(),
		FramesFannedOut:   framesFannedOut.Load(),
		MessagesSeen:      messagesSeen.Load(),
		MessagesSwallowed: messagesSwallowed.Load(),
		KeyboardPolls:     keyboardPolls.Load(),
		MousePolls:        mousePolls.Load(),
		DevicesRecorded:   devicesRecorded.Load(),
		ToggleFlips:       toggleFlips.Load(),
	}
}

// Text 스냅샷을 들여쓴 JSON으로
func Text() string {
	data, err := json.MarshalIndent(Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// TrySave saveInterval 경과 시에만 상태 파일 기록
func TrySave() {
	saveMu.Lock()
	due := time.Since(lastSave) >= saveInterval
	if due {
		lastSave = time.Now()
	}
	saveMu.Unlock()
	if due {
		Save()
	}
}

// Save 상태 파일 즉시 기록 (종료 시 호출)
func Save() {
	data, err := json.MarshalIndent(Snapshot(), "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(getStatePath(), data, 0644)
}

func getStatePath() string {
	exe, err := os.Executable()
	if err != nil {
		return stateFile
	}
	return filepath.Join(filepath.Dir(exe), stateFile)
}
