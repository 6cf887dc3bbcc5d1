package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// setupCmd 预计算电路产物
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "编译电路并生成证明/验证密钥",
	Long: `对所有已注册电路执行编译与可信设置，并写入 artifacts 目录。

已存在且校验通过的产物直接加载；产物之间不一致时报错，不会覆盖。
输出每个电路的版本信息（约束数、哈希函数、验证密钥摘要）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		if err := c.artifacts.Preload(); err != nil {
			return err
		}
		if dir := c.artifacts.Dir(); dir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "📦 电路产物目录: %s\n", dir)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️ 未配置 artifacts 目录，产物仅在内存中生成")
		}
		return printJSON(c.artifacts.Loaded())
	},
}
