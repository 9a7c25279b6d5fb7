package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Provider 标识导师服务使用的模型后端。
type Provider string

const (
	ProviderArk    Provider = "ark"
	ProviderOpenAI Provider = "openai"
)

const (
	defaultTopic          = "general"
	defaultTimeoutSeconds = 60
	defaultOpenAIModel    = "gpt-4o-mini"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Mentor  MentorConfig
	Metrics MetricsConfig
}

// Load 从环境变量加载配置。MENTOR_CONFIG_FILE 指向的 YAML 文件提供默认值，环境变量优先。
func Load() (*Config, error) {
	file, err := loadFileConfig(strings.TrimSpace(os.Getenv("MENTOR_CONFIG_FILE")))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(file)
	if err != nil {
		return nil, err
	}

	mentor, err := loadMentorConfig(file)
	if err != nil {
		return nil, err
	}

	metrics, err := loadMetricsConfig(file)
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Mentor: mentor, Metrics: metrics}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(file fileConfig) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", firstNonEmpty(file.Port, "8080"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// MentorConfig 描述导师服务调用相关配置。
type MentorConfig struct {
	Provider     Provider
	Topic        string
	HistoryLimit int
	// Timeout 为单次调用的上限，0 表示不设上限。
	Timeout time.Duration
	Ark     ArkConfig
	OpenAI  OpenAIConfig
}

// Enabled 表示所选后端是否提供了必需的凭证。
func (c MentorConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Enabled()
	default:
		return c.Ark.Enabled()
	}
}

// ArkConfig 描述 Ark 大模型相关配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// OpenAIConfig 描述 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
}

// Enabled 表示是否提供了必需的密钥。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// MetricsConfig 描述指标导出配置。
type MetricsConfig struct {
	Enabled bool
}

func loadMentorConfig(file fileConfig) (MentorConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("MENTOR_PROVIDER", firstNonEmpty(file.Mentor.Provider, string(ProviderArk)))))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return MentorConfig{}, fmt.Errorf("invalid MENTOR_PROVIDER value %q", provider)
	}

	historyLimit := 0
	if file.Mentor.HistoryLimit != nil {
		historyLimit = *file.Mentor.HistoryLimit
	}
	if override, err := parseOptionalIntEnv("MENTOR_HISTORY_LIMIT"); err != nil {
		return MentorConfig{}, err
	} else if override != nil {
		historyLimit = *override
	}
	if historyLimit < 0 {
		historyLimit = 0
	}

	timeoutSeconds := defaultTimeoutSeconds
	if file.Mentor.TimeoutSeconds != nil {
		timeoutSeconds = *file.Mentor.TimeoutSeconds
	}
	if override, err := parseOptionalIntEnv("MENTOR_TIMEOUT"); err != nil {
		return MentorConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}
	if timeoutSeconds < 0 {
		return MentorConfig{}, fmt.Errorf("invalid MENTOR_TIMEOUT value %d: must not be negative", timeoutSeconds)
	}

	arkCfg, err := loadArkConfig(file.Mentor.Ark)
	if err != nil {
		return MentorConfig{}, err
	}

	openAICfg, err := loadOpenAIConfig(file.Mentor.OpenAI)
	if err != nil {
		return MentorConfig{}, err
	}

	return MentorConfig{
		Provider:     provider,
		Topic:        strings.ToLower(getEnvOrDefault("MENTOR_TOPIC", firstNonEmpty(file.Mentor.Topic, defaultTopic))),
		HistoryLimit: historyLimit,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		Ark:          arkCfg,
		OpenAI:       openAICfg,
	}, nil
}

func loadArkConfig(file fileArkConfig) (ArkConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ArkConfig{}, err
	}
	if temperature == nil {
		temperature = file.Temperature
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return ArkConfig{}, err
	}
	if topP == nil {
		topP = file.TopP
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return ArkConfig{}, err
	}
	if maxTokens == nil {
		maxTokens = file.MaxTokens
	}

	return ArkConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       getEnvOrDefault("ARK_MODEL", file.Model),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", firstNonEmpty(file.BaseURL, "https://ark.cn-beijing.volces.com/api/v3")),
		Region:      getEnvOrDefault("ARK_REGION", firstNonEmpty(file.Region, "cn-beijing")),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func loadOpenAIConfig(file fileOpenAIConfig) (OpenAIConfig, error) {
	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return OpenAIConfig{}, err
	}
	if temperature == nil {
		temperature = file.Temperature
	}

	return OpenAIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:       getEnvOrDefault("OPENAI_MODEL", firstNonEmpty(file.Model, defaultOpenAIModel)),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", file.BaseURL),
		Temperature: temperature,
	}, nil
}

func loadMetricsConfig(file fileConfig) (MetricsConfig, error) {
	def := true
	if file.Metrics.Enabled != nil {
		def = *file.Metrics.Enabled
	}

	enabled, err := parseBoolEnv("METRICS_ENABLED", def)
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{Enabled: enabled}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
