package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/bububa/research-crew/config"
	"github.com/bububa/research-crew/tools/currency"
)

// env holds what the Before hook resolved for the commands
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp() *cli.App {
	e := new(env)
	return &cli.App{
		Name:  "research-crew",
		Usage: "research a topic with a crew of agents, or convert currencies",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "runtime config file (yaml, json or toml)",
				EnvVars: []string{"CREW_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-dir",
				Usage: "directory holding .env and .env.$APP_ENV",
				Value: ".",
			},
		},
		Before: func(c *cli.Context) error {
			loaded, err := config.LoadEnv(c.String("env-dir"))
			if err != nil {
				return fmt.Errorf("load env: %w", err)
			}
			if e.cfg, err = config.Load(c.String("config")); err != nil {
				return err
			}
			if e.logger, err = newLogger(e.cfg.Log); err != nil {
				return err
			}
			e.logger.Debug("environment loaded", zap.Strings("files", loaded))
			return nil
		},
		After: func(*cli.Context) error {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(e),
			convertCommand(e),
		},
	}
}

func runCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "research, summarize and fact check a topic",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "topic to research", Required: true},
			&cli.StringFlag{Name: "specs", Usage: "directory with agents.yaml and tasks.yaml overriding the embedded ones"},
			&cli.StringFlag{Name: "output-dir", Usage: "directory for task output files"},
			&cli.BoolFlag{Name: "json", Usage: "print the full crew output as json"},
		},
		Action: func(c *cli.Context) error {
			cfg := e.cfg
			if dir := c.String("specs"); dir != "" {
				cfg.Crew.SpecsDir = dir
			}
			if dir := c.String("output-dir"); dir != "" {
				cfg.Crew.OutputDir = dir
			}
			rc, closeFn, err := newResearchCrew(cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeFn()
			out, err := rc.Kickoff(c.Context, map[string]string{"topic": c.String("topic")})
			if err != nil {
				return err
			}
			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, err = fmt.Fprintln(c.App.Writer, out.Raw)
			return err
		},
	}
}

func convertCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "convert an amount between currencies with live rates",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "amount", Aliases: []string{"a"}, Required: true},
			&cli.StringFlag{Name: "from", Required: true},
			&cli.StringFlag{Name: "to", Required: true},
		},
		Action: func(c *cli.Context) error {
			tool, closeFn, err := newCurrencyTool(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeFn()
			out, err := tool.Run(c.Context, currency.NewInput(c.Float64("amount"), c.String("from"), c.String("to")))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, out.Result)
			return err
		},
	}
}
