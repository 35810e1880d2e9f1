package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromYAML 验证 YAML 配置能否被成功加载并覆盖默认值
func TestLoadConfigFromYAML(t *testing.T) {
	// 1. 创建一个临时的 YAML 配置文件
	yamlContent := `
server:
  address: ":9090"
aggregator:
  fetch_timeout_seconds: 5
  max_results_per_source: 20
  currency_rates:
    GBP: 1.0
    USD: 0.80
    EUR: 0.85
scoring:
  dedup:
    title_similarity_threshold: 0.75
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir) // 测试结束后清理目录

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	// 2. 调用 LoadConfig 函数加载配置
	config, err := LoadConfig(configPath)

	// 3. 断言结果
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config, "配置对象不应为 nil")

	assert.Equal(t, ":9090", config.Server.Address, "服务器地址与预期不符")
	assert.Equal(t, 5, config.Aggregator.FetchTimeoutSeconds)
	assert.Equal(t, 20, config.Aggregator.MaxResultsPerSource)
	assert.Equal(t, 0.80, config.Aggregator.CurrencyRates["USD"], "货币换算表未被覆盖")
	assert.Equal(t, 0.75, config.Scoring.Dedup.TitleSimilarityThreshold)

	// 未在文件中出现的字段应保留默认值
	assert.Equal(t, 25.0, config.Scoring.ATS.Keywords, "未覆盖的ATS权重应保留默认值")
	assert.Equal(t, 0.70, config.Scoring.Match.Skills)
}

// TestLoadConfigMissingFileFallsBackToDefaults 验证配置文件不存在时回退到默认配置
func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/config.yaml")

	require.NoError(t, err, "配置文件不存在时不应报错")
	require.NotNil(t, config)

	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, 100.0, config.Scoring.ATS.Sum(), "默认ATS权重合计应为100")
	assert.Equal(t, 0.60, config.Scoring.Dedup.TitleSimilarityThreshold)
}

// TestValidateRejectsBadWeights 验证权重约束的校验逻辑
func TestValidateRejectsBadWeights(t *testing.T) {
	// ATS权重合计不为100
	cfg := DefaultConfig()
	cfg.Scoring.ATS.Keywords = 50
	err := cfg.Validate()
	assert.Error(t, err, "ATS权重合计不为100时应报错")

	// 匹配权重合计不为1.0
	cfg = DefaultConfig()
	cfg.Scoring.Match.Skills = 0.50
	err = cfg.Validate()
	assert.Error(t, err, "匹配权重合计不为1.0时应报错")

	// 去重阈值越界
	cfg = DefaultConfig()
	cfg.Scoring.Dedup.TitleSimilarityThreshold = 1.5
	err = cfg.Validate()
	assert.Error(t, err, "去重阈值越界时应报错")
}

// TestEnvOverridesCredentials 验证环境变量能覆盖外部API凭证
func TestEnvOverridesCredentials(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "env-app-id")
	t.Setenv("ADZUNA_API_KEY", "env-api-key")
	t.Setenv("REED_API_KEY", "env-reed-key")
	t.Setenv("RAPIDAPI_KEY", "env-rapid-key")

	config, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "env-app-id", config.Sources.Adzuna.AppID)
	assert.Equal(t, "env-api-key", config.Sources.Adzuna.APIKey)
	assert.Equal(t, "env-reed-key", config.Sources.Reed.APIKey)
	assert.Equal(t, "env-rapid-key", config.Sources.JSearch.APIKey)
}
