package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sarge/internal/catalog"
)

// TableInfo summarizes one catalog table.
type TableInfo struct {
	Name         string   `json:"name"`
	Columns      int      `json:"columns"`
	PartitionKey string   `json:"partition_key,omitempty"`
	OIDColumns   []string `json:"oid_columns,omitempty"`
	NotNull      []string `json:"not_null,omitempty"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog <catalog.cue>",
		Short:         "Compile a catalog file and summarize its tables",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCatalog(opts *RootOptions, cmd *cobra.Command, path string) error {
	formatter := newFormatter(opts, cmd)

	cat, err := loadCatalog(formatter, path)
	if err != nil {
		return err
	}

	infos := summarize(cat)
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s: %d columns", info.Name, info.Columns)
		if info.PartitionKey != "" {
			fmt.Fprintf(formatter.Writer, ", partition key %s", info.PartitionKey)
		}
		if len(info.OIDColumns) > 0 {
			fmt.Fprintf(formatter.Writer, ", oid %s", strings.Join(info.OIDColumns, ","))
		}
		if len(info.NotNull) > 0 {
			fmt.Fprintf(formatter.Writer, ", not null %s", strings.Join(info.NotNull, ","))
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func summarize(cat *catalog.Catalog) []TableInfo {
	infos := make([]TableInfo, 0, len(cat.Tables))
	for name, table := range cat.Tables {
		info := TableInfo{
			Name:         name,
			Columns:      len(table.Columns),
			PartitionKey: table.PartitionKey,
		}
		for col, c := range table.Columns {
			if c.OID {
				info.OIDColumns = append(info.OIDColumns, col)
			}
			if !c.Nullable {
				info.NotNull = append(info.NotNull, col)
			}
		}
		sort.Strings(info.OIDColumns)
		sort.Strings(info.NotNull)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
