package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const ConfigFile = "guihook_settings.json"

// Config 훅 설정
type Config struct {
	// 게임 윈도우 타이틀 (타이틀 검색 경로에 사용)
	WindowTitle string `json:"window_title"`

	// 입력 토글 DirectInput 스캔 코드
	ToggleKey int `json:"toggle_key"`

	// 셋업 직후 렌더/메시지 팬아웃 활성 여부
	EnableRendering bool `json:"enable_rendering"`
	EnableMessaging bool `json:"enable_messaging"`

	// 디버그 콘솔 할당 여부
	Console bool `json:"console"`
}

// Default 기본 설정 반환
func Default() *Config {
	return &Config{
		WindowTitle:     "Skyrim Special Edition",
		ToggleKey:       210,
		EnableRendering: true,
		EnableMessaging: true,
		Console:         false,
	}
}

// Load 설정 파일 로드
func Load() (*Config, error) {
	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save 설정 파일 저장
func (c *Config) Save() error {
	configPath := getConfigPath()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func getConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ConfigFile
	}
	return filepath.Join(filepath.Dir(exe), ConfigFile)
}
