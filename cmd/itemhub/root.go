package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"itemhub/app"
	"itemhub/config"
	"itemhub/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd 创建 itemhub 根命令
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "itemhub",
		Short:        "Item CRUD service with concurrent bulk processing",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override logging.format (console|json|std)")

	cmd.AddCommand(newServeCmd(opts), newProcessCmd(opts), newSeedCmd(opts))
	return cmd
}

// load 读取配置并应用命令行覆盖
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, cfg.Validate()
}

// bootstrap 一次性命令共用：加载配置、装配应用并启动工作池
func (o *rootOptions) bootstrap(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	logging.SetLogger(logger)

	a, err := app.New(commandContext(cmd), cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.StartPool(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
