package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkprivacy/internal/app"
	"github.com/weisyn/zkprivacy/internal/core/infrastructure/log"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/orchestrator"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	Verbose    bool   // 在控制台输出日志

	AskPassphrase bool // 从终端输入托管口令（首次启用加密）
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "zkprivacy",
	Short: "零知识隐私子系统",
	Long: `zkprivacy - 设备本地秘密托管与零知识证明

支持的协议:
  ownership  证明持有某个承诺对应的秘密，不泄露秘密
  range      证明某个值落在 [min, max] 区间内，不泄露该值

serve 启动 HTTP 证明服务；其余子命令在本地一次性执行。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 一次性命令的标准输出只留给结果
		if cmd.Name() != "serve" && !globalFlags.Verbose {
			os.Setenv(log.CLIModeEnv, "true")
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径 (默认: $"+app.ConfigPathEnv+" 或 configs/zkprivacy.json)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "在控制台输出日志")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.AskPassphrase, "ask-passphrase", "P", false, "从终端输入托管文件口令（不回显）")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(secretCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// components 一次性命令使用的已装配组件
type components struct {
	app          app.App
	orchestrator *orchestrator.Orchestrator
	artifacts    *artifacts.Manager
}

// startComponents 装配组件（不启动 HTTP 服务，电路产物按需加载）
func startComponents() (*components, error) {
	passphrase, err := passphraseOption()
	if err != nil {
		return nil, err
	}

	c := &components{}
	running, err := app.Start(
		[]interface{}{&c.orchestrator, &c.artifacts},
		app.WithConfigFile(globalFlags.ConfigPath),
		app.WithoutPreload(),
		passphrase,
	)
	if err != nil {
		return nil, err
	}
	c.app = running
	return c, nil
}

func (c *components) close() {
	if err := c.app.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ 关闭时出错: %v\n", err)
	}
}

// printJSON 以缩进 JSON 输出结果
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseBigInt 解析十进制或 0x 前缀十六进制整数
func parseBigInt(name, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("--%s 不能为空", name)
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("--%s 不是合法整数: %q", name, s)
	}
	return v, nil
}
