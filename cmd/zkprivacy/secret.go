package main

import (
	"context"

	"github.com/spf13/cobra"
)

// secretCmd 秘密托管管理
var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "管理设备本地托管的秘密",
	Long:  "为主体生成、查询、删除秘密。秘密只保存在本设备，命令只输出承诺，不输出秘密本身。",
}

var secretCreateCmd = &cobra.Command{
	Use:   "create <subject>",
	Short: "为主体生成秘密（已存在时复用）并输出承诺",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		commitment, err := c.orchestrator.CreateSecret(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"subject": args[0], "commitment": commitment.String()})
	},
}

var secretCommitmentCmd = &cobra.Command{
	Use:   "commitment <subject>",
	Short: "输出主体秘密的承诺",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		commitment, err := c.orchestrator.Commitment(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"subject": args[0], "commitment": commitment.String()})
	},
}

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出已托管秘密的主体",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		subjects, err := c.orchestrator.ListSubjects(context.Background())
		if err != nil {
			return err
		}
		return printJSON(subjects)
	},
}

var secretRemoveCmd = &cobra.Command{
	Use:   "remove <subject>",
	Short: "删除主体秘密（不可恢复）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := startComponents()
		if err != nil {
			return err
		}
		defer c.close()

		return c.orchestrator.DestroySecret(context.Background(), args[0])
	},
}

func init() {
	secretCmd.AddCommand(secretCreateCmd)
	secretCmd.AddCommand(secretCommitmentCmd)
	secretCmd.AddCommand(secretListCmd)
	secretCmd.AddCommand(secretRemoveCmd)
}
