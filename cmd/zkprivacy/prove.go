package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/pkg/types"
)

var proveFlags struct {
	out    string
	secret string
	value  string
	min    string
	max    string
}

// proveCmd 生成证明
var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "生成零知识证明",
}

var proveOwnershipCmd = &cobra.Command{
	Use:   "ownership [subject]",
	Short: "证明持有主体秘密（或 --secret 指定的演示秘密）",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && proveFlags.secret == "" {
			return fmt.Errorf("需要指定主体或 --secret")
		}

		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		ctx := context.Background()
		var result *types.ProofResult
		if len(args) == 1 {
			result, err = c.orchestrator.ProveOwnership(ctx, args[0])
		} else {
			secret, packErr := commitment.PackSecretValue(proveFlags.secret)
			if packErr != nil {
				return packErr
			}
			result, err = c.orchestrator.ProveOwnershipOf(ctx, secret)
		}
		if err != nil {
			return err
		}
		return writeResult(result)
	},
}

var proveRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "证明 min <= value <= max",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseBigInt("value", proveFlags.value)
		if err != nil {
			return err
		}
		lo, err := parseBigInt("min", proveFlags.min)
		if err != nil {
			return err
		}
		hi, err := parseBigInt("max", proveFlags.max)
		if err != nil {
			return err
		}

		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		result, err := c.orchestrator.ProveRange(context.Background(), value, lo, hi)
		if err != nil {
			return err
		}
		return writeResult(result)
	},
}

// writeResult 输出证明到 --out 文件或标准输出
func writeResult(result *types.ProofResult) error {
	if proveFlags.out == "" {
		return printJSON(result)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(proveFlags.out, data, 0644); err != nil {
		return fmt.Errorf("写入证明文件失败: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✅ 证明已写入: %s\n", proveFlags.out)
	return nil
}

func init() {
	proveCmd.PersistentFlags().StringVarP(&proveFlags.out, "out", "o", "", "证明输出文件（默认标准输出）")

	proveOwnershipCmd.Flags().StringVar(&proveFlags.secret, "secret", "", "演示秘密（字符串，不查询托管存储）")

	proveRangeCmd.Flags().StringVar(&proveFlags.value, "value", "", "私有值")
	proveRangeCmd.Flags().StringVar(&proveFlags.min, "min", "", "区间下界")
	proveRangeCmd.Flags().StringVar(&proveFlags.max, "max", "", "区间上界")

	proveCmd.AddCommand(proveOwnershipCmd)
	proveCmd.AddCommand(proveRangeCmd)
}
