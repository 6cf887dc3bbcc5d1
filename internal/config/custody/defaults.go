package custody

// 秘密托管默认配置值
const (
	// BackendMemory 进程内存（仅测试与临时使用，进程退出即丢失）
	BackendMemory = "memory"
	// BackendFile 单个 JSON 文件
	BackendFile = "file"
	// BackendBadger 嵌入式 BadgerDB
	BackendBadger = "badger"

	// defaultBackend 默认使用文件后端
	defaultBackend = BackendFile

	// defaultFileName 文件后端默认文件名（相对 data_dir）
	defaultFileName = "secrets.json"

	// defaultBadgerDir Badger 后端默认目录（相对 data_dir）
	defaultBadgerDir = "custody"

	// defaultDataDir 未配置 data_dir 时的数据根目录
	defaultDataDir = "./data"

	// defaultSyncWrites Badger 同步写入（秘密只有一份，不能丢）
	defaultSyncWrites = true

	// PassphraseEnv 文件后端口令环境变量（优先于配置文件）
	PassphraseEnv = "ZKPRIVACY_CUSTODY_PASSPHRASE"
)
