package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkprivacy/internal/core/infrastructure/log"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/verifier"
	"github.com/weisyn/zkprivacy/pkg/types"
)

var verifyFlags struct {
	circuit string
	vkFiles []string
}

// errNotVerified 验证未通过（退出码非零）
var errNotVerified = errors.New("proof not verified")

// verifyCmd 验证证明
var verifyCmd = &cobra.Command{
	Use:   "verify [proof.json]",
	Short: "验证证明文件（默认从标准输入读取）",
	Long: `验证 {proof, publicSignals} 格式的证明。

指定 --vk 时只使用给定的验证密钥导出文件（verifying.key.json），
不需要证明密钥，也不会触发可信设置；否则使用本地电路产物。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		var result types.ProofResult
		if err := json.NewDecoder(r).Decode(&result); err != nil {
			return fmt.Errorf("解析证明失败: %w", err)
		}
		if result.Proof == nil || result.PublicSignals == nil {
			return fmt.Errorf("证明文件缺少 proof 或 publicSignals")
		}

		circuit := types.CircuitID(verifyFlags.circuit)
		if circuit == "" {
			circuit = result.Proof.Circuit
		}

		ctx := context.Background()
		var ok bool
		if len(verifyFlags.vkFiles) > 0 {
			v, err := staticVerifier(verifyFlags.vkFiles)
			if err != nil {
				return err
			}
			defer v.Close()
			ok, err = v.Verify(ctx, circuit, result.PublicSignals, result.Proof)
			if err != nil {
				return err
			}
		} else {
			c, err := startComponents()
			if err != nil {
				return err
			}
			defer c.close()
			ok, err = c.orchestrator.Verify(ctx, circuit, result.PublicSignals, result.Proof)
			if err != nil {
				return err
			}
		}

		if err := printJSON(map[string]bool{"verified": ok}); err != nil {
			return err
		}
		if !ok {
			return errNotVerified
		}
		return nil
	},
}

// staticVerifier 由验证密钥导出文件构建验证器
func staticVerifier(paths []string) (*verifier.Verifier, error) {
	readers := make([]io.Reader, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		readers = append(readers, f)
	}
	keys, err := verifier.NewStaticKeySource(readers...)
	if err != nil {
		return nil, err
	}
	return verifier.New(log.GetLogger(), keys, nil, nil)
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlags.circuit, "circuit", "", "电路ID（默认取证明信封中的电路）")
	verifyCmd.Flags().StringSliceVar(&verifyFlags.vkFiles, "vk", nil, "验证密钥导出文件（可重复）")
}
