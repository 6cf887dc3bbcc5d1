package custody

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt 参数
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16

	sealedFormatVersion = 1
	kdfScrypt           = "scrypt"
)

// ErrUnsealFailed 口令错误或密文被篡改
var ErrUnsealFailed = errors.New("unseal failed: wrong passphrase or tampered file")

// ErrUnsupportedKDF 加密信封的 KDF 参数不在支持范围内
var ErrUnsupportedKDF = errors.New("unsupported kdf parameters")

// kdfParams scrypt 参数与盐，作为派生密钥的缓存键
type kdfParams struct {
	salt    string
	n, r, p int
}

// sealedEnvelope 静态加密的文件格式
type sealedEnvelope struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	N          int    `json:"n"`
	R          int    `json:"r"`
	P          int    `json:"p"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// sealer 口令派生密钥 + XChaCha20-Poly1305
//
// 密钥按盐缓存：同一文件生命周期内只派生一次，每次写入使用新的随机 nonce。
type sealer struct {
	passphrase []byte
	params     kdfParams
	salt       []byte
	key        []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: []byte(passphrase)}
}

// deriveKey 只接受本版本写出的参数，防止篡改的文件触发任意代价的 scrypt
func (s *sealer) deriveKey(salt []byte, n, r, p int) ([]byte, error) {
	if n != scryptN || r != scryptR || p != scryptP || len(salt) != saltLen {
		return nil, fmt.Errorf("%w: n=%d r=%d p=%d salt=%d", ErrUnsupportedKDF, n, r, p, len(salt))
	}
	params := kdfParams{salt: string(salt), n: n, r: r, p: p}
	if s.key != nil && s.params == params {
		return s.key, nil
	}
	key, err := scrypt.Key(s.passphrase, salt, n, r, p, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("派生密钥失败: %w", err)
	}
	s.params = params
	s.salt = append([]byte(nil), salt...)
	s.key = key
	return key, nil
}

// seal 加密映射的 JSON 编码，存储键作为附加认证数据
func (s *sealer) seal(plaintext []byte) (*sealedEnvelope, error) {
	salt := s.salt
	if salt == nil {
		salt = make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
	}
	key, err := s.deriveKey(salt, scryptN, scryptR, scryptP)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return &sealedEnvelope{
		Version:    sealedFormatVersion,
		KDF:        kdfScrypt,
		N:          scryptN,
		R:          scryptR,
		P:          scryptP,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, []byte(StorageKey)),
	}, nil
}

// open 解密
func (s *sealer) open(env *sealedEnvelope) ([]byte, error) {
	if env.Version != sealedFormatVersion || env.KDF != kdfScrypt {
		return nil, fmt.Errorf("不支持的加密格式: version=%d kdf=%s", env.Version, env.KDF)
	}
	key, err := s.deriveKey(env.Salt, env.N, env.R, env.P)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrUnsealFailed
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(StorageKey))
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}
