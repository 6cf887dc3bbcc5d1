package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkprivacy/internal/app"
)

// serveCmd 启动 HTTP 证明服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 证明服务",
	Long:  "启动 /zk/prove 与 /zk/verify 端点，并暴露 /health 与 /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := passphraseOption()
		if err != nil {
			return err
		}
		running, err := app.Start(nil,
			app.WithConfigFile(globalFlags.ConfigPath),
			app.WithAPI(),
			passphrase,
		)
		if err != nil {
			return err
		}
		fmt.Println("🔄 证明服务正在运行，按 Ctrl+C 停止...")
		running.Wait()
		return nil
	},
}
