// Package zkproof 零知识证明配置
package zkproof

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/weisyn/zkprivacy/pkg/types"
)

// ZKProofOptions 证明配置选项
type ZKProofOptions struct {
	ProvingScheme    string        `json:"proving_scheme"`      // 证明方案（groth16）
	Curve            string        `json:"curve"`               // 椭圆曲线
	ArtifactsDir     string        `json:"artifacts_dir"`       // 电路产物目录，空表示仅内存
	PreloadOnStart   bool          `json:"preload_on_start"`    // 启动时预加载
	VerifyCacheTTL   time.Duration `json:"verify_cache_ttl"`    // 验证结果缓存生命周期
	VerifyCacheMaxMB int           `json:"verify_cache_max_mb"` // 验证结果缓存上限（MB）
}

// Config 证明配置实现
type Config struct {
	options *ZKProofOptions
}

// New 创建证明配置
func New(userConfig *types.UserZKProofConfig, dataDir string) *Config {
	options := &ZKProofOptions{
		ProvingScheme:    defaultProvingScheme,
		Curve:            defaultCurve,
		PreloadOnStart:   defaultPreloadOnStart,
		VerifyCacheTTL:   defaultVerifyCacheTTL,
		VerifyCacheMaxMB: defaultVerifyCacheMaxMB,
	}
	if dataDir != "" {
		options.ArtifactsDir = filepath.Join(dataDir, defaultArtifactsDir)
	}

	if userConfig != nil {
		if userConfig.Curve != nil {
			options.Curve = strings.ToLower(*userConfig.Curve)
		}
		if userConfig.ArtifactsDir != nil {
			options.ArtifactsDir = *userConfig.ArtifactsDir
		}
		if userConfig.PreloadOnStart != nil {
			options.PreloadOnStart = *userConfig.PreloadOnStart
		}
		if userConfig.VerifyCacheTTL != nil {
			if d, err := time.ParseDuration(*userConfig.VerifyCacheTTL); err == nil && d > 0 {
				options.VerifyCacheTTL = d
			}
		}
		if userConfig.VerifyCacheMaxMB != nil && *userConfig.VerifyCacheMaxMB > 0 {
			options.VerifyCacheMaxMB = *userConfig.VerifyCacheMaxMB
		}
	}

	return &Config{options: options}
}

// NewFromOptions 从完整选项创建配置（测试使用）
func NewFromOptions(options *ZKProofOptions) *Config {
	return &Config{options: options}
}

// GetOptions 获取完整的证明配置选项
func (c *Config) GetOptions() *ZKProofOptions {
	return c.options
}

// ResolveCurveID 解析曲线
//
// ⚠️ 承诺引擎的原生 Poseidon2 固定在 BLS12-377 标量域，其它曲线会导致电路内外哈希不一致。
func (c *Config) ResolveCurveID() (ecc.ID, error) {
	switch c.options.Curve {
	case "", "bls12-377":
		return ecc.BLS12_377, nil
	case "bn254", "bls12-381", "bw6-761":
		return 0, fmt.Errorf("曲线 %s 与 Poseidon2 承诺域不一致，仅支持 bls12-377", c.options.Curve)
	default:
		return 0, fmt.Errorf("不支持的椭圆曲线: %s", c.options.Curve)
	}
}
