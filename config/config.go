package config

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	DatabasePath          string `json:"databasePath"`
	ListenAddr            string `json:"listenAddr"`
	LogLevel              string `json:"logLevel"`
	LogFormat             string `json:"logFormat"`
	UploadDir             string `json:"uploadDir"`
	PrintOutputDir        string `json:"printOutputDir"`
	BrowserBin            string `json:"browserBin"`
	LegacyParenArithmetic bool   `json:"legacyParenArithmetic"`
	WorkOrderPrefix       string `json:"workOrderPrefix"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

// FilePath は設定ファイルの場所です。テストやCLIフラグから差し替えられます。
var FilePath = "./mfg_config.json"

func defaults() Config {
	return Config{
		DatabasePath:    "mfg.db",
		ListenAddr:      ":8090",
		LogLevel:        "info",
		LogFormat:       "console",
		UploadDir:       "upload",
		PrintOutputDir:  "print",
		WorkOrderPrefix: "WO",
	}
}

func applyDefaults(c *Config) {
	d := defaults()
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.UploadDir == "" {
		c.UploadDir = d.UploadDir
	}
	if c.PrintOutputDir == "" {
		c.PrintOutputDir = d.PrintOutputDir
	}
	if c.WorkOrderPrefix == "" {
		c.WorkOrderPrefix = d.WorkOrderPrefix
	}
}

// LoadConfig は設定ファイルを読み込みます。ファイルが無い場合は既定値を返します。
// 読み込みに失敗した場合も既定値を有効にしたうえでエラーを返します。
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = defaults()
			return cfg, nil
		}
		cfg = defaults()
		return cfg, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		cfg = defaults()
		return cfg, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(FilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
