package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vegasq/columnql/output"
	"github.com/vegasq/columnql/query"
)

const shellHelp = `Statements run as typed:
  select name, age from God where age > 10 order by age desc limit 5
  delete from God where name = "Diana"

Commands:
  :prepare STATEMENT   prepare a statement with @name placeholders
  :bind NAME VALUE     bind a placeholder of the prepared statement
  :params              list bound and unbound placeholders
  :run                 execute the prepared statement
  :format NAME         switch output format (json, csv, table)
  :async on|off        run statements on the async worker pool
  :families            list loaded families and row counts
  :help                show this help
  exit, quit           leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive query shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()
		return newShell(a).loop(cmd.Context())
	},
}

type shell struct {
	app      *app
	async    bool
	prepared *query.PreparedStatement
}

func newShell(a *app) *shell {
	return &shell{app: a}
}

func historyPath() string {
	return filepath.Join(os.TempDir(), ".columnql_history")
}

func (s *shell) loop(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	if f, err := os.Open(historyPath()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("columnql shell, type :help for commands")
	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt("columnql> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == "exit" || input == "quit" {
			return nil
		}
		if err := s.handle(ctx, input); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
}

func (s *shell) handle(ctx context.Context, input string) error {
	if !strings.HasPrefix(input, ":") {
		return s.app.run(ctx, input, s.async)
	}

	command, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	switch command {
	case ":help":
		fmt.Println(shellHelp)
	case ":prepare":
		if rest == "" {
			return fmt.Errorf("usage: :prepare STATEMENT")
		}
		stmt, err := s.app.parser.Prepare(rest, s.app.store, s.app.observer)
		if err != nil {
			return err
		}
		s.prepared = stmt
		if names := stmt.Params().ParameterNames(); len(names) > 0 {
			fmt.Printf("prepared, placeholders: %s\n", strings.Join(names, ", "))
		} else {
			fmt.Println("prepared")
		}
	case ":bind":
		if s.prepared == nil {
			return fmt.Errorf("no prepared statement")
		}
		name, raw, ok := strings.Cut(rest, " ")
		if !ok || name == "" {
			return fmt.Errorf("usage: :bind NAME VALUE")
		}
		return s.prepared.Bind(strings.TrimPrefix(name, "@"), bindingValue(strings.TrimSpace(raw)))
	case ":params":
		if s.prepared == nil {
			return fmt.Errorf("no prepared statement")
		}
		s.printParams()
	case ":run":
		if s.prepared == nil {
			return fmt.Errorf("no prepared statement")
		}
		return s.app.runPrepared(ctx, s.prepared)
	case ":format":
		if _, err := output.New(rest, io.Discard); err != nil {
			return err
		}
		s.app.format = rest
	case ":async":
		switch rest {
		case "on":
			s.async = true
		case "off":
			s.async = false
		default:
			return fmt.Errorf("usage: :async on|off")
		}
	case ":families":
		for _, family := range s.app.store.Families() {
			fmt.Printf("%s\t%d\n", family, s.app.store.Count(family))
		}
	default:
		return fmt.Errorf("unknown command %s, type :help", command)
	}
	return nil
}

func (s *shell) printParams() {
	params := s.prepared.Params()
	values := params.Values()
	for _, name := range params.ParameterNames() {
		if v, ok := values[name]; ok {
			fmt.Printf("@%s = %v\n", name, v)
		} else {
			fmt.Printf("@%s (unbound)\n", name)
		}
	}
}

var shellKeywords = []string{
	"select", "delete", "from", "where", "and", "or", "not", "order", "by",
	"asc", "desc", "skip", "limit", "in", "like", "between", "convert",
	":prepare", ":bind", ":params", ":run", ":format", ":async", ":families", ":help",
}

// complete offers keywords and family names for the last word of line
func (s *shell) complete(line string) []string {
	start := strings.LastIndexAny(line, " (,") + 1
	prefix, word := line[:start], strings.ToLower(line[start:])
	if word == "" {
		return nil
	}

	var out []string
	for _, kw := range shellKeywords {
		if strings.HasPrefix(kw, word) {
			out = append(out, prefix+kw)
		}
	}
	for _, family := range s.app.store.Families() {
		if strings.HasPrefix(strings.ToLower(family), word) {
			out = append(out, prefix+family)
		}
	}
	return out
}
