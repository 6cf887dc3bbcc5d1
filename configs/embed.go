// Package configs 内置默认配置
package configs

import _ "embed"

// DefaultConfig 默认配置文件内容（configs/zkprivacy.json）
//
//go:embed zkprivacy.json
var DefaultConfig []byte
