package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	asyncFlag bool
	bindFlags []string
)

var queryCmd = &cobra.Command{
	Use:   "query STATEMENT",
	Short: "Run a select or delete statement",
	Example: `  columnql query "select * from God where name like \"Di%\" limit 5"
  columnql query -f csv "select name, age from God order by age desc"
  columnql query --async "delete from God where age < 10"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()
		return a.run(cmd.Context(), args[0], asyncFlag)
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare STATEMENT",
	Short: "Run a statement with @name placeholders",
	Example: `  columnql prepare "select * from God where age > @age" --bind age=10
  columnql prepare "select * from God where name in (@a, @b)" -b a='"Diana"' -b b='"Apollo"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		stmt, err := a.parser.Prepare(args[0], a.store, a.observer)
		if err != nil {
			return err
		}
		values, err := parseBindings(bindFlags)
		if err != nil {
			return err
		}
		if err := stmt.BindAll(values); err != nil {
			return err
		}
		if !stmt.Params().IsEmpty() {
			return fmt.Errorf("missing --bind for %v", stmt.Params().Names())
		}
		return a.runPrepared(cmd.Context(), stmt)
	},
}

func init() {
	queryCmd.Flags().BoolVar(&asyncFlag, "async", false, "execute on the async worker pool")
	prepareCmd.Flags().StringArrayVarP(&bindFlags, "bind", "b", nil, "bind a placeholder: name=value (repeatable)")
}
