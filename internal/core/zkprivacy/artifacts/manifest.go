package artifacts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"

	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// 产物目录内的文件名
const (
	FileConstraintSystem = "circuit.r1cs"
	FileProvingKey       = "proving.key"
	FileVerifyingKey     = "verifying.key"
	FileVerifyingKeyJSON = "verifying.key.json"
	FileManifest         = "manifest.json"

	manifestVersion = 1
)

// Manifest 产物清单
//
// 三个二进制产物必须同版本；清单记录每个文件的 SHA-256，单独替换任一文件都会被发现。
type Manifest struct {
	FormatVersion   int               `json:"formatVersion"`
	Circuit         types.CircuitID   `json:"circuit"`
	Version         uint32            `json:"version"`
	Curve           string            `json:"curve"`
	Protocol        string            `json:"protocol"`
	HashFunction    string            `json:"hashFunction"`
	ConstraintCount int               `json:"constraintCount"`
	CreatedAt       time.Time         `json:"createdAt"`
	Files           map[string]string `json:"files"`
}

// VerifyingKeyExport 可分发的验证密钥（JSON）
type VerifyingKeyExport struct {
	Protocol     string          `json:"protocol"`
	Curve        string          `json:"curve"`
	Circuit      types.CircuitID `json:"circuit"`
	Version      uint32          `json:"version"`
	NbPublic     int             `json:"nbPublic"`
	VKHash       string          `json:"vkHash"`
	VerifyingKey string          `json:"verifyingKey"`
}

// digest SHA-256 十六进制
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic 先写临时文件再重命名，避免半写入的产物
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readManifest 读取清单；不存在时返回 (nil, nil)
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileManifest))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解析产物清单失败: %w", err)
	}
	return &m, nil
}

// readVerified 读取产物文件并与清单摘要比对
func readVerified(dir string, m *Manifest, name string) ([]byte, error) {
	expected, ok := m.Files[name]
	if !ok {
		return nil, fmt.Errorf("清单缺少 %s", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	if actual := digest(data); actual != expected {
		return nil, fmt.Errorf("%s 摘要不一致: manifest=%s actual=%s", name, shortHash(expected), shortHash(actual))
	}
	return data, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// ExportVerifyingKey 导出 JSON 格式的验证密钥
func ExportVerifyingKey(b *Bundle) (*VerifyingKeyExport, error) {
	var buf bytes.Buffer
	if _, err := b.VerifyingKey.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	return &VerifyingKeyExport{
		Protocol:     types.ProvingSchemeGroth16,
		Curve:        types.CurveBLS12377,
		Circuit:      b.Definition.ID,
		Version:      b.Definition.Version,
		NbPublic:     b.Definition.NbPublic(),
		VKHash:       b.VKHash,
		VerifyingKey: hex.EncodeToString(buf.Bytes()),
	}, nil
}

// ReadVerifyingKeyExport 读取并校验 JSON 验证密钥
//
// vkHash 必须与密钥字节一致，否则返回 ErrStructural。
func ReadVerifyingKeyExport(r io.Reader) (*VerifyingKeyExport, groth16.VerifyingKey, error) {
	var export VerifyingKeyExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, nil, fmt.Errorf("%w: verifying key json: %v", zk.ErrStructural, err)
	}
	if export.Protocol != types.ProvingSchemeGroth16 || export.Curve != types.CurveBLS12377 {
		return nil, nil, zk.WrapStructuralError(string(export.Circuit),
			fmt.Sprintf("unsupported protocol/curve %s/%s", export.Protocol, export.Curve))
	}

	raw, err := hex.DecodeString(export.VerifyingKey)
	if err != nil {
		return nil, nil, zk.WrapStructuralError(string(export.Circuit), "verifying key is not hex")
	}
	if digest(raw) != export.VKHash {
		return nil, nil, zk.WrapStructuralError(string(export.Circuit), "vkHash does not match verifying key bytes")
	}

	vk := groth16.NewVerifyingKey(curveID)
	if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, nil, zk.WrapStructuralError(string(export.Circuit), "verifying key bytes: "+err.Error())
	}
	return &export, vk, nil
}
