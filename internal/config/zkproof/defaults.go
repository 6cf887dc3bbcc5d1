package zkproof

import "time"

// 零知识证明默认配置值
const (
	// defaultCurve Poseidon2 承诺与电路共用的曲线
	defaultCurve = "bls12-377"

	// defaultArtifactsDir 电路产物目录（相对 data_dir）
	defaultArtifactsDir = "artifacts"

	// defaultPreloadOnStart 服务启动时预加载，避免首个请求承担可信设置耗时
	defaultPreloadOnStart = true

	// defaultVerifyCacheTTL 验证结果缓存生命周期
	defaultVerifyCacheTTL = 10 * time.Minute

	// defaultVerifyCacheMaxMB 验证结果缓存上限
	defaultVerifyCacheMaxMB = 16

	// defaultProvingScheme 证明方案
	defaultProvingScheme = "groth16"
)
