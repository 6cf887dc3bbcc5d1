package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkprivacy/configs"
	"github.com/weisyn/zkprivacy/internal/app/version"
)

var initConfigForce bool

// initConfigCmd 写出默认配置文件
var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "写出默认配置文件",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "configs/zkprivacy.json"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !initConfigForce {
			return fmt.Errorf("配置文件已存在: %s（使用 --force 覆盖）", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, configs.DefaultConfig, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✅ 已写出默认配置: %s\n", path)
		return nil
	},
}

// versionCmd 版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "覆盖已存在的文件")
}
