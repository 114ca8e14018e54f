package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/columnql/output"
	"github.com/vegasq/columnql/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema FILE",
	Short: "Show the columns of a parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := store.ExtractSchemaInfo(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file '%s' not found", args[0])
			}
			return err
		}

		rows := make([]map[string]interface{}, len(infos))
		for i, info := range infos {
			rows[i] = map[string]interface{}{
				"name":          info.Name,
				"type":          info.Type,
				"physical_type": info.PhysicalType,
				"logical_type":  info.LogicalType,
				"required":      info.Required,
				"optional":      info.Optional,
				"repeated":      info.Repeated,
			}
		}

		formatter, err := output.New(cfg.Output.Format, os.Stdout)
		if err != nil {
			return err
		}
		formatter.SetColumns([]string{"name", "type", "physical_type", "logical_type", "required", "optional", "repeated"})
		return formatter.Format(rows)
	},
}
