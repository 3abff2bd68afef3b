// Package main provides the locres CLI: localized resource lookups, resource
// file linting, and the HTTP lookup service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"locres/internal/core"
	httpserver "locres/internal/http"
	"locres/internal/registry"
	"locres/pkg/ansi"
	"locres/pkg/locfile"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "locres",
	Short: "Localized resource lookup",
	Long: `locres resolves numeric error codes and named message keys into localized
template strings from {base}_{language}.ini resource files, falling back to
the default language when a translation is missing.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("resources-dir", "", "directory holding the resource files")
	rootCmd.PersistentFlags().String("base", "", "resource file base name")
	rootCmd.PersistentFlags().String("lang", locfile.DefaultLanguage, "language to resolve")
	rootCmd.PersistentFlags().String("color", "auto", "color output (auto, always, never)")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", core.DefaultServerPort, "HTTP server port")
	rootCmd.PersistentFlags().Int("cache-max-stores", core.DefaultMaxStores, "maximum resident language stores")
	rootCmd.PersistentFlags().Int("rate-limit", 0, "lookup requests per client per minute (0 disables)")
	rootCmd.PersistentFlags().StringSlice("preload", nil, "languages to preload when serving")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(errorCmd, msgCmd, langsCmd, lintCmd, serveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("LOCRES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Resources.Dir = viper.GetString("resources-dir")
	cfg.Resources.BaseName = viper.GetString("base")
	if lang := viper.GetString("lang"); lang != "" {
		cfg.Resources.Language = lang
	}
	cfg.Resources.Preload = viper.GetStringSlice("preload")

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	cfg.Server.Port = viper.GetInt("server-port")
	if cfg.Server.Port == 0 {
		cfg.Server.Port = core.DefaultServerPort
	}
	cfg.Server.RateLimitPerMinute = viper.GetInt("rate-limit")

	cfg.Cache.MaxStores = viper.GetInt("cache-max-stores")
	if cfg.Cache.MaxStores == 0 {
		cfg.Cache.MaxStores = core.DefaultMaxStores
	}

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// colorEnabled decides whether templates should be rendered with escape
// sequences or have their markers stripped.
func colorEnabled() bool {
	switch viper.GetString("color") {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

func printTemplate(template string) {
	if colorEnabled() {
		fmt.Println(ansi.Render(template))
	} else {
		fmt.Println(ansi.Strip(template))
	}
}

func openStore() (*locfile.Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := locfile.New(config.Resources.Dir, config.Resources.BaseName, config.Resources.Language)
	if err != nil {
		return nil, err
	}

	if store.ResolvedLanguage() != config.Resources.Language {
		logger.Warn("Language fell back to default",
			zap.String("requested", config.Resources.Language),
			zap.String("resolved", store.ResolvedLanguage()))
	}

	return store, nil
}

var errorCmd = &cobra.Command{
	Use:   "error <code>",
	Short: "Look up the template for an error code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		code, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("error code must be an integer, got %q", args[0])
		}

		store, err := openStore()
		if err != nil {
			return err
		}

		template, err := store.GetErrorMsg(code)
		if err != nil {
			return err
		}

		printTemplate(template)
		return nil
	},
}

var msgCmd = &cobra.Command{
	Use:   "msg <key>",
	Short: "Look up the template for a message key",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		template, err := store.GetMsg(args[0])
		if err != nil {
			return err
		}

		printTemplate(template)
		return nil
	},
}

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List the languages available for the configured base name",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := config.Validate(); err != nil {
			return err
		}

		languages, err := locfile.Languages(config.Resources.Dir, config.Resources.BaseName)
		if err != nil {
			return err
		}

		for _, lang := range languages {
			fmt.Println(lang)
		}
		return nil
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint <file>...",
	Short: "Check resource files for contract violations",
	Long: `lint parses each file and reports malformed resources directly. Lookups at
runtime treat a malformed translation as missing and fall back to the default
language, which can hide authoring mistakes; lint is the explicit check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var failed bool
		for _, path := range args {
			if err := locfile.Lint(path); err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				continue
			}
			fmt.Printf("%s: ok\n", path)
		}
		if failed {
			return errors.New("one or more resource files are invalid")
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP lookup service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting locres",
		zap.String("resources_dir", config.Resources.Dir),
		zap.String("base", config.Resources.BaseName),
		zap.String("default_language", config.Resources.Language))

	reg, err := registry.New(config.Resources, config.Cache.MaxStores, logger.Named("registry"))
	if err != nil {
		return fmt.Errorf("failed to create store registry: %w", err)
	}

	if len(config.Resources.Preload) > 0 {
		if err := reg.Preload(ctx, config.Resources.Preload...); err != nil {
			return fmt.Errorf("failed to preload languages: %w", err)
		}
	}

	server := httpserver.NewServer(&config.Server, logger.Named("http"), reg, config.Resources.Language)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("locres stopped")
	return nil
}
