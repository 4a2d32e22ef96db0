package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/kerntune/kerntune/pkg/kerntune/config"
	"github.com/kerntune/kerntune/pkg/kerntune/engine"
	"github.com/kerntune/kerntune/pkg/kerntune/ledger"
	"github.com/kerntune/kerntune/pkg/kerntune/logging"
	"github.com/kerntune/kerntune/pkg/kerntune/output"
	"github.com/kerntune/kerntune/pkg/kerntune/pipeline"
	"github.com/kerntune/kerntune/pkg/kerntune/rules"
	"github.com/kerntune/kerntune/pkg/kerntune/snapshot"
	"github.com/kerntune/kerntune/pkg/kerntune/types"
)

// app bundles everything a command needs after startup: the loaded
// configuration with flag overrides applied, and a wired pipeline.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	persona  types.Persona
	format   string
}

// bootstrap loads configuration, initializes logging, collects a system
// snapshot, and wires the full pipeline.
func bootstrap() (*app, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if personaFlag != "" {
		cfg.Persona = personaFlag
	}
	if formatFlag != "" {
		cfg.Format = formatFlag
	}

	persona, err := types.ParsePersona(cfg.Persona)
	if err != nil {
		return nil, fmt.Errorf("invalid persona: %w", err)
	}

	if err := initLogging(cfg); err != nil {
		return nil, err
	}

	conf, err := engine.NewConfFile(cfg.SysctlDir)
	if err != nil {
		return nil, fmt.Errorf("opening sysctl config dir: %w", err)
	}

	led, err := ledger.New(cfg.Ledger.Path,
		ledger.WithPruner(conf),
		ledger.WithReloader(pipeline.SysctlReloader{}),
	)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	p := pipeline.New(
		snapshot.CollectDefault(),
		rules.DefaultRegistry(),
		led,
		engine.NewDefaultMutator(),
		engine.WithRunner(engine.ExecRunner{}),
		engine.WithPersister(conf),
	)

	return &app{cfg: cfg, pipeline: p, persona: persona, format: cfg.Format}, nil
}

// initLogging configures file logging from config and the verbosity flags.
func initLogging(cfg *config.Config) error {
	lc := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: cfg.Logging.ConsoleLevel,
	}
	if lc.Path == "" {
		lc.Path = config.DefaultLogPath()
	}
	if verbose {
		lc.Level = "debug"
		if !quiet {
			lc.ConsoleLevel = "debug"
		}
	}
	return logging.Init(lc)
}

func (a *app) close() {
	_ = logging.Close()
}

// render formats the document and writes it to stdout.
func render(format string, doc *output.Document) error {
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, doc); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// confirm prompts on stdin and returns true for a yes answer.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
