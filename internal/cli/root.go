package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions 是所有子命令共享的全局参数
type RootOptions struct {
	ConfigDir string
	Format    string
	Verbose   bool
}

// ValidFormats 是支持的输出格式
var ValidFormats = []string{"text", "json"}

// NewRootCommand 创建 formrecordctl 的根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "formrecordctl",
		Short: "表单记录管理工具",
		Long:  "初始化表单记录数据表，并在命令行中查看已保存的表单提交。",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("不支持的输出格式 %q，可选值为 %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigDir, "config", "c", "", "config.yaml 所在目录（默认 ./config 和 .）")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "输出格式 (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "输出调试日志")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRecordsCommand(opts))

	return cmd
}
