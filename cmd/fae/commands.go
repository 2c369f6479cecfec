package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fae-lang/fae/pkg/binding"
	"github.com/fae-lang/fae/pkg/config"
	"github.com/fae-lang/fae/pkg/disasm"
	ferrors "github.com/fae-lang/fae/pkg/errors"
	"github.com/fae-lang/fae/pkg/library"
	"github.com/fae-lang/fae/pkg/logging"
	"github.com/fae-lang/fae/pkg/metrics"
	"github.com/fae-lang/fae/pkg/preview"
	"github.com/fae-lang/fae/pkg/replshell"
	"github.com/fae-lang/fae/pkg/template"
	"github.com/fae-lang/fae/pkg/watch"
)

func runCompile(cmd *cobra.Command, args []string) error {
	src, err := readFile(args[0])
	if err != nil {
		return err
	}
	if _, err := template.New(cmd.Context(), src); err != nil {
		printCompileError(err)
		return err
	}
	printSuccess(fmt.Sprintf("%s compiled cleanly", args[0]))
	return nil
}

func runDisasm(cmd *cobra.Command, args []string) error {
	src, err := readFile(args[0])
	if err != nil {
		return err
	}
	t, err := template.New(cmd.Context(), src)
	if err != nil {
		printCompileError(err)
		return err
	}
	listing := disasm.Disassemble(t.Program())
	fmt.Print(disasm.Format(listing))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	bindingsPath, _ := cmd.Flags().GetString("bindings")
	root, _ := cmd.Flags().GetString("root")

	b, err := loadBindings(bindingsPath)
	if err != nil {
		return err
	}

	if root == "" {
		root = filepath.Dir(path)
	}
	lib, err := library.Open(root, true, true)
	if err != nil {
		return fmt.Errorf("opening library at %s: %w", root, err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	out, err := lib.Render(cmd.Context(), filepath.ToSlash(rel), b)
	if err != nil {
		printError(err)
		return err
	}
	fmt.Print(out)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	root := args[0]
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	cfg.Library.Root = root
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg.Library.Recursive, _ = cmd.Flags().GetBool("recursive")
		cfg.Preview.Addr, _ = cmd.Flags().GetString("addr")
		cfg.Library.Watch, _ = cmd.Flags().GetBool("watch")
	}

	logger := logging.New(logging.Config{MinLevel: logging.INFO})
	m := metrics.New()

	lib, err := library.Open(cfg.Library.Root, cfg.Library.Recursive, true,
		library.WithLogger(logger), library.WithMetrics(m))
	if err != nil {
		return err
	}

	srv := preview.New(cfg.Preview.Addr, lib, preview.WithLogger(logger))

	var w *watch.Watcher
	if cfg.Library.Watch {
		w, err = watch.New(cfg.Library.Root, cfg.Library.Recursive, lib, watch.WithLogger(logger))
		if err != nil {
			return err
		}
		defer w.Close()
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		<-sigs
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	printInfo(fmt.Sprintf("serving %s on %s", cfg.Library.Root, cfg.Preview.Addr))
	return srv.ListenAndServe()
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	recursive, _ := cmd.Flags().GetBool("recursive")

	logger := logging.New(logging.Config{MinLevel: logging.INFO})
	lib, err := library.Open(root, recursive, true, library.WithLogger(logger))
	if err != nil {
		return err
	}

	w, err := watch.New(root, recursive, lib, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	printInfo(fmt.Sprintf("watching %s for changes (ctrl-c to stop)", root))
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	var lib *library.Library
	if len(args) == 1 {
		root := args[0]
		logger := logging.New(logging.Config{MinLevel: logging.INFO})
		opened, err := library.Open(root, true, true, library.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("opening library at %s: %w", root, err)
		}
		lib = opened
	}
	shell := replshell.New(os.Stdin, os.Stdout, nil, lib)
	return shell.Run()
}

func printCompileError(err error) {
	if it, ok := err.(*ferrors.InvalidTemplate); ok {
		fmt.Fprintln(os.Stderr, it.FormatError(!color.NoColor))
		return
	}
	printError(err)
}

func loadBindings(path string) (binding.MapBinding, error) {
	b := binding.New()
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bindings: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing bindings: %w", err)
	}
	for k, v := range raw {
		b = b.With(k, jsonToValue(v))
	}
	return b, nil
}

func jsonToValue(v interface{}) binding.Value {
	switch t := v.(type) {
	case bool:
		return binding.Bool{V: t}
	case float64:
		return binding.Float{V: t}
	case string:
		return binding.String{V: t}
	case []interface{}:
		items := make([]binding.Value, len(t))
		for i, e := range t {
			items[i] = jsonToValue(e)
		}
		return binding.Container{Items: items}
	default:
		return binding.String{V: ""}
	}
}
