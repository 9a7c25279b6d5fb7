package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig 为 YAML 覆盖文件的结构。密钥只从环境变量读取。
type fileConfig struct {
	Port    string            `yaml:"port"`
	Mentor  fileMentorConfig  `yaml:"mentor"`
	Metrics fileMetricsConfig `yaml:"metrics"`
}

type fileMentorConfig struct {
	Provider       string           `yaml:"provider"`
	Topic          string           `yaml:"topic"`
	HistoryLimit   *int             `yaml:"historyLimit"`
	TimeoutSeconds *int             `yaml:"timeoutSeconds"`
	Ark            fileArkConfig    `yaml:"ark"`
	OpenAI         fileOpenAIConfig `yaml:"openai"`
}

type fileArkConfig struct {
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"baseURL"`
	Region      string   `yaml:"region"`
	Temperature *float64 `yaml:"temperature"`
	TopP        *float64 `yaml:"topP"`
	MaxTokens   *int     `yaml:"maxTokens"`
}

type fileOpenAIConfig struct {
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"baseURL"`
	Temperature *float64 `yaml:"temperature"`
}

type fileMetricsConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// loadFileConfig 读取 YAML 覆盖文件，path 为空时返回零值。
func loadFileConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
