package artifacts

import (
	"io"
	"os"
	"sync"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// gnark 使用 zerolog 输出编译/证明调试信息（compiling circuit, parsed circuit inputs 等），
// 会污染我们的日志系统，所以在执行期间禁用。
// 多个证明可能并发执行，用引用计数保证最后一个结束的调用才恢复。
var (
	quietMu    sync.Mutex
	quietDepth int
)

// QuietGnark 静默 gnark 日志，返回恢复函数
func QuietGnark() (restore func()) {
	quietMu.Lock()
	if quietDepth == 0 {
		gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	}
	quietDepth++
	quietMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			quietMu.Lock()
			defer quietMu.Unlock()
			quietDepth--
			if quietDepth == 0 {
				// 与 gnark 默认输出一致
				gnarklogger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
					With().Timestamp().Logger())
			}
		})
	}
}
