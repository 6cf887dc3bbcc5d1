package artifacts

import (
	"time"

	"github.com/weisyn/zkprivacy/pkg/types"
)

// 产物来源
const (
	SourceSetup  = "setup"  // 本进程完成编译与可信设置
	SourceDisk   = "disk"   // 从产物目录加载并通过清单校验
	SourceMemory = "memory" // 未配置产物目录，仅保存在内存
)

// CircuitVersionInfo 电路版本信息
type CircuitVersionInfo struct {
	CircuitID       types.CircuitID `json:"circuit"`
	Version         uint32          `json:"version"`
	Curve           string          `json:"curve"`
	CreatedAt       time.Time       `json:"createdAt"`
	ConstraintCount int             `json:"constraintCount"`
	NbPublic        int             `json:"nbPublic"`
	HashFunction    string          `json:"hashFunction"`
	VKHash          string          `json:"vkHash"`
	Source          string          `json:"source"`
	Notes           string          `json:"notes,omitempty"`
}
