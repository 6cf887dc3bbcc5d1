package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/weisyn/zkprivacy/internal/app"
	"github.com/weisyn/zkprivacy/internal/config"
	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/custody"
)

// 终端交互（测试中替换）
var (
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
	promptOut    io.Writer = os.Stderr
)

// promptPassword 提示输入口令（不回显）
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(promptOut, prompt+": ")
	bytePassword, err := readPassword(stdinFd())
	fmt.Fprintln(promptOut)
	if err != nil {
		return "", fmt.Errorf("读取口令失败: %w", err)
	}
	return string(bytePassword), nil
}

// resolvePassphrase 决定是否需要从终端读取托管口令
//
// 只对文件后端生效：配置与环境变量都没有口令时，
// 已加密的托管文件必须输入口令；--ask-passphrase 用于首次启用加密。
func resolvePassphrase(options *custodyconfig.CustodyOptions, ask bool) (string, error) {
	if options.Backend != custodyconfig.BackendFile || options.Passphrase != "" {
		return "", nil
	}

	sealed, err := custody.IsSealedFile(options.Path)
	if err != nil {
		return "", err
	}
	if !sealed && !ask {
		return "", nil
	}

	if !isTerminal(stdinFd()) {
		return "", fmt.Errorf("托管文件需要口令，但标准输入不是终端（可设置 %s）", custodyconfig.PassphraseEnv)
	}

	passphrase, err := promptPassword("🔐 请输入托管口令")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("口令不能为空")
	}

	if !sealed {
		confirm, err := promptPassword("🔐 请再次输入口令")
		if err != nil {
			return "", err
		}
		if confirm != passphrase {
			return "", fmt.Errorf("两次输入的口令不一致")
		}
	}
	return passphrase, nil
}

// passphraseOption 按当前配置解析托管口令，返回应用选项
func passphraseOption() (app.Option, error) {
	appConfig, err := config.LoadAppConfig(app.ConfigFilePath(globalFlags.ConfigPath))
	if err != nil {
		return nil, err
	}
	passphrase, err := resolvePassphrase(config.NewProvider(appConfig).GetCustody(), globalFlags.AskPassphrase)
	if err != nil {
		return nil, err
	}
	return app.WithCustodyPassphrase(passphrase), nil
}
