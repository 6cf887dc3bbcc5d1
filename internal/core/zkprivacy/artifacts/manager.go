// Package artifacts 管理电路产物（约束系统、证明密钥、验证密钥）
//
// 🎯 **加载一次**：每个电路的产物在进程内只加载一次（sync.Once），之后只读共享，
// 并发证明之间不需要额外同步。
//
// 📋 **加载路径**：
//   - 未配置产物目录：编译 + 可信设置，仅保存在内存
//   - 目录中无清单：编译 + 可信设置 + 持久化（产物文件先写，清单最后写）
//   - 目录中有清单：逐个文件校验 SHA-256 后反序列化
package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/circuits"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// curveID 承诺引擎的原生 Poseidon2 固定在 BLS12-377 标量域
const curveID = ecc.BLS12_377

// Bundle 单个电路版本的全部产物（加载后只读）
type Bundle struct {
	Definition   *circuits.Definition
	CS           constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
	VKHash       string // 验证密钥序列化字节的 SHA-256（hex）
	Info         *CircuitVersionInfo
}

type entry struct {
	once   sync.Once
	done   atomic.Bool
	bundle *Bundle
	err    error
}

// Manager 电路产物管理器
type Manager struct {
	logger  log.Logger
	dir     string
	entries map[types.CircuitID]*entry
}

// NewManager 创建产物管理器
//
// dir 为空时产物只保存在内存中，每个进程重新做可信设置。
func NewManager(logger log.Logger, dir string) *Manager {
	entries := make(map[types.CircuitID]*entry)
	for _, def := range circuits.All() {
		entries[def.ID] = &entry{}
	}
	return &Manager{
		logger:  logger,
		dir:     dir,
		entries: entries,
	}
}

// Dir 产物根目录
func (m *Manager) Dir() string {
	return m.dir
}

// Load 获取电路产物（首次调用时加载）
//
// ⚠️ 加载失败同样只发生一次：产物不一致需要人工处理，重试没有意义。
func (m *Manager) Load(id types.CircuitID) (*Bundle, error) {
	def, err := circuits.Lookup(id)
	if err != nil {
		return nil, err
	}
	e := m.entries[id]
	e.once.Do(func() {
		e.bundle, e.err = m.load(def)
		e.done.Store(true)
	})
	return e.bundle, e.err
}

// Preload 加载全部电路
func (m *Manager) Preload() error {
	for _, def := range circuits.All() {
		if _, err := m.Load(def.ID); err != nil {
			return err
		}
	}
	return nil
}

// Loaded 已成功加载的电路版本信息（按电路ID排序，不触发加载）
func (m *Manager) Loaded() []*CircuitVersionInfo {
	var infos []*CircuitVersionInfo
	for _, def := range circuits.All() {
		e := m.entries[def.ID]
		if e.done.Load() && e.err == nil && e.bundle != nil {
			infos = append(infos, e.bundle.Info)
		}
	}
	return infos
}

// ============================================================================
//                                 加载实现
// ============================================================================

func (m *Manager) circuitDir(def *circuits.Definition) string {
	return filepath.Join(m.dir, string(def.ID), fmt.Sprintf("v%d", def.Version))
}

func (m *Manager) load(def *circuits.Definition) (*Bundle, error) {
	restore := QuietGnark()
	defer restore()

	start := time.Now()

	if m.dir == "" {
		bundle, err := setup(def)
		if err != nil {
			return nil, zk.WrapProverFailureError(string(def.ID), err)
		}
		bundle.Info.Source = SourceMemory
		m.logger.Infof("🔧 电路产物已生成（仅内存）: %s, constraints=%d, 耗时=%v",
			def.Key(), bundle.Info.ConstraintCount, time.Since(start))
		return bundle, nil
	}

	dir := m.circuitDir(def)
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, zk.WrapProverFailureError(string(def.ID), fmt.Errorf("artifact set inconsistent: %w", err))
	}

	if manifest == nil {
		bundle, err := setup(def)
		if err != nil {
			return nil, zk.WrapProverFailureError(string(def.ID), err)
		}
		if err := persist(dir, bundle); err != nil {
			return nil, zk.WrapProverFailureError(string(def.ID), fmt.Errorf("持久化电路产物失败: %w", err))
		}
		bundle.Info.Source = SourceSetup
		m.logger.Infof("🔧 电路产物已生成并持久化: %s -> %s, constraints=%d, 耗时=%v",
			def.Key(), dir, bundle.Info.ConstraintCount, time.Since(start))
		return bundle, nil
	}

	bundle, err := loadFromDisk(dir, def, manifest)
	if err != nil {
		m.logger.Errorf("⚠️ 电路产物不一致: %s, dir=%s, err=%v", def.Key(), dir, err)
		return nil, zk.WrapProverFailureError(string(def.ID), fmt.Errorf("artifact set inconsistent: %w", err))
	}
	m.logger.Infof("📦 电路产物已加载: %s, vkHash=%s, 耗时=%v", def.Key(), shortHash(bundle.VKHash), time.Since(start))
	return bundle, nil
}

// setup 编译电路并执行可信设置
func setup(def *circuits.Definition) (*Bundle, error) {
	cs, err := frontend.Compile(curveID.ScalarField(), r1cs.NewBuilder, def.Blank())
	if err != nil {
		return nil, fmt.Errorf("编译电路失败: %w", err)
	}

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("生成可信设置失败: %w", err)
	}

	var vkBuf bytes.Buffer
	if _, err := vk.WriteTo(&vkBuf); err != nil {
		return nil, fmt.Errorf("序列化验证密钥失败: %w", err)
	}

	return newBundle(def, cs, pk, vk, digest(vkBuf.Bytes()), time.Now().UTC()), nil
}

func newBundle(def *circuits.Definition, cs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, vkHash string, createdAt time.Time) *Bundle {
	return &Bundle{
		Definition:   def,
		CS:           cs,
		ProvingKey:   pk,
		VerifyingKey: vk,
		VKHash:       vkHash,
		Info: &CircuitVersionInfo{
			CircuitID:       def.ID,
			Version:         def.Version,
			Curve:           types.CurveBLS12377,
			CreatedAt:       createdAt,
			ConstraintCount: cs.GetNbConstraints(),
			NbPublic:        def.NbPublic(),
			HashFunction:    def.HashFunction,
			VKHash:          vkHash,
			Notes:           def.Notes,
		},
	}
}

// persist 写入产物文件与清单
func persist(dir string, b *Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var csBuf, pkBuf, vkBuf bytes.Buffer
	if _, err := b.CS.WriteTo(&csBuf); err != nil {
		return fmt.Errorf("序列化约束系统失败: %w", err)
	}
	if _, err := b.ProvingKey.WriteTo(&pkBuf); err != nil {
		return fmt.Errorf("序列化证明密钥失败: %w", err)
	}
	if _, err := b.VerifyingKey.WriteTo(&vkBuf); err != nil {
		return fmt.Errorf("序列化验证密钥失败: %w", err)
	}

	export, err := ExportVerifyingKey(b)
	if err != nil {
		return err
	}
	vkJSON, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}

	files := map[string][]byte{
		FileConstraintSystem: csBuf.Bytes(),
		FileProvingKey:       pkBuf.Bytes(),
		FileVerifyingKey:     vkBuf.Bytes(),
		FileVerifyingKeyJSON: vkJSON,
	}
	manifest := &Manifest{
		FormatVersion:   manifestVersion,
		Circuit:         b.Definition.ID,
		Version:         b.Definition.Version,
		Curve:           types.CurveBLS12377,
		Protocol:        types.ProvingSchemeGroth16,
		HashFunction:    b.Definition.HashFunction,
		ConstraintCount: b.Info.ConstraintCount,
		CreatedAt:       b.Info.CreatedAt,
		Files:           make(map[string]string, len(files)),
	}
	for name, data := range files {
		if err := writeFileAtomic(filepath.Join(dir, name), data); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", name, err)
		}
		manifest.Files[name] = digest(data)
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, FileManifest), manifestData)
}

// loadFromDisk 按清单校验并加载产物
func loadFromDisk(dir string, def *circuits.Definition, m *Manifest) (*Bundle, error) {
	if m.Circuit != def.ID || m.Version != def.Version {
		return nil, fmt.Errorf("清单电路 %s.v%d 与期望 %s 不符", m.Circuit, m.Version, def.Key())
	}
	if m.Curve != types.CurveBLS12377 || m.Protocol != types.ProvingSchemeGroth16 {
		return nil, fmt.Errorf("清单曲线/方案 %s/%s 不受支持", m.Curve, m.Protocol)
	}

	csData, err := readVerified(dir, m, FileConstraintSystem)
	if err != nil {
		return nil, err
	}
	pkData, err := readVerified(dir, m, FileProvingKey)
	if err != nil {
		return nil, err
	}
	vkData, err := readVerified(dir, m, FileVerifyingKey)
	if err != nil {
		return nil, err
	}
	// 可分发的验证密钥导出不参与加载，但必须与同组产物一致
	if _, err := readVerified(dir, m, FileVerifyingKeyJSON); err != nil {
		return nil, err
	}

	cs := groth16.NewCS(curveID)
	if _, err := cs.ReadFrom(bytes.NewReader(csData)); err != nil {
		return nil, fmt.Errorf("反序列化约束系统失败: %w", err)
	}
	pk := groth16.NewProvingKey(curveID)
	if _, err := pk.ReadFrom(bytes.NewReader(pkData)); err != nil {
		return nil, fmt.Errorf("反序列化证明密钥失败: %w", err)
	}
	vk := groth16.NewVerifyingKey(curveID)
	if _, err := vk.ReadFrom(bytes.NewReader(vkData)); err != nil {
		return nil, fmt.Errorf("反序列化验证密钥失败: %w", err)
	}

	if nbPublic := cs.GetNbPublicVariables() - 1; nbPublic != def.NbPublic() {
		return nil, fmt.Errorf("约束系统公开输入数 %d 与电路定义 %d 不符", nbPublic, def.NbPublic())
	}

	bundle := newBundle(def, cs, pk, vk, m.Files[FileVerifyingKey], m.CreatedAt)
	bundle.Info.Source = SourceDisk
	return bundle, nil
}
