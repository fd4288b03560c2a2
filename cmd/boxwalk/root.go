package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"boxwalk/pkg/config"
	"boxwalk/pkg/observability"
	"boxwalk/pkg/pipeline"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "~/.boxwalk.yaml"

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration and built the logger.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.FromConfig(a.cfg), a.logger)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "boxwalk",
		Short:         "Boxwalk lays out HTML documents into a box tree.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is "+defaultConfigFile+")")
	flags.Int("width", 0, "viewport width in pixels")
	flags.Int("height", 0, "viewport height in pixels")
	flags.String("measurer", "", "text measurer: canvas or heuristic")
	flags.Bool("scripts", true, "run <script> elements before layout")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newRenderCmd(a), newDumpCmd(a), newCompareCmd(a))
	return cmd, a
}

var flagKeys = map[string]string{
	"width":     "viewport.width",
	"height":    "viewport.height",
	"measurer":  "text.measurer",
	"scripts":   "scripts.enabled",
	"log-level": "logger.level",
}

func (a *app) initialize(cmd *cobra.Command) error {
	v := viper.New()
	config.SetDefaults(v)
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	path, err := a.configPath()
	if err != nil {
		return err
	}
	if err := config.Bind(v, path); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := observability.NewLoggerTo(cfg.Logger, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	logger.Debug("configuration loaded",
		zap.String("version", Version),
		zap.String("config_file", path),
		zap.Int("viewport_width", cfg.Viewport.Width),
		zap.Int("viewport_height", cfg.Viewport.Height),
		zap.String("measurer", cfg.Text.Measurer))
	return nil
}

// configPath returns the explicit --config file, or the default file when it
// exists, or "" for defaults and environment only.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return homedir.Expand(a.cfgFile)
	}
	path, err := homedir.Expand(defaultConfigFile)
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}
