package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/SlpAus/form-record-backend/internal/form"
	"github.com/SlpAus/form-record-backend/internal/record"
	"github.com/spf13/cobra"
)

// RecordsOptions 是 records 命令的参数
type RecordsOptions struct {
	Form    string
	Page    int
	PerPage int
}

// NewRecordsCommand 创建 records 命令，按表单分页列出已保存的提交
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:          "records",
		Short:        "列出表单记录",
		Long:         "按ID倒序列出表单记录。指定 --form 时只列出该表单的记录。",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Form, "form", "f", "", "表单 alias")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "页码")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 20, "每页条数")

	return cmd
}

func runRecords(cmd *cobra.Command, rootOpts *RootOptions, opts *RecordsOptions) error {
	a, err := openApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	var active *form.Form
	if opts.Form != "" {
		registry, err := a.registry(ctx)
		if err != nil {
			return err
		}
		if active, err = registry.Form(ctx, opts.Form); err != nil {
			return err
		}
		if !active.HasAddon(record.AddonName) {
			return fmt.Errorf("表单 %s 未启用记录插件", opts.Form)
		}
	} else if err := a.schema.Ensure(ctx); err != nil {
		return err
	}

	result, err := a.repo.List(ctx, active, record.ListParams{Page: opts.Page, PerPage: opts.PerPage})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		return json.NewEncoder(out).Encode(result)
	}
	return writeRecordsText(out, result)
}

func writeRecordsText(out io.Writer, result *record.ListResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFORM\tSESSION\tSTATUS\tCREATED\tVALUES")
	for _, item := range result.Items {
		rec := item.Record
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.FormID, rec.Session, rec.Status,
			rec.CreatedDate.Format("2006-01-02 15:04:05"), formatValues(item.Values))
	}
	fmt.Fprintf(w, "共 %d 条，第 %d 页，每页 %d 条\n", result.Total, result.Page, result.PerPage)
	return w.Flush()
}

func formatValues(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + values[k]
	}
	return strings.Join(parts, " ")
}
