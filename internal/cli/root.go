package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/logger"
	"github.com/baditaflorin/go_subs_normalize/internal/config"
	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
	"github.com/baditaflorin/go_subs_normalize/pkg/subsnorm"
)

// EnvPrefix prefixes environment overrides, e.g. SUBSNORM_LOG_LEVEL.
const EnvPrefix = "SUBSNORM"

var errFilesFailed = errors.New("one or more files could not be processed")

// app carries the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	var toStdout bool
	rootCmd := &cobra.Command{
		Use:   "subsnorm [file...]",
		Short: "Normalize node names in proxy subscription files",
		Long: `subsnorm rewrites proxy subscription lists in place.

It decodes \uXXXX escapes, turns flag emoji into a country marker and
replaces noisy name/ps values (provider names, IP addresses, domains,
rate tokens, decorative symbols) with a placeholder. Repeated names get
a _N suffix. Use "-" to read standard input and write standard output.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return domain.ErrNoInput
			}
			cmd.SilenceUsage = true
			return a.runFix(cmd, args, toStdout)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./subsnorm.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (json, text)")
	flags.String("log-file", "", "Log file path (empty = stderr)")
	rootCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write results to standard output instead of rewriting files")
	rootCmd.Flags().Int("workers", 4, "Number of files processed at once")
	rootCmd.Flags().Int("threshold", 15, "Names longer than this many characters are simplified")
	rootCmd.Flags().Bool("dedup", true, "Append _N to repeated names")
	rootCmd.Flags().Bool("verify-yaml", false, "Refuse to write output that breaks a YAML file")

	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
		"log.file":   "log-file",
	} {
		bindFlag(a.v, key, flags.Lookup(flag))
	}
	for key, flag := range map[string]string{
		"workers":               "workers",
		"normalize.threshold":   "threshold",
		"normalize.dedup":       "dedup",
		"normalize.verify_yaml": "verify-yaml",
	} {
		bindFlag(a.v, key, rootCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newWatchCommand(a),
		newRulesCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment on top of the defaults
// and flags.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("subsnorm")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return config.New(a.v)
}

// setup loads the configuration and builds the logger and normalizer.
func (a *app) setup() (*config.Config, ports.Logger, *subsnorm.Normalizer, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	lg, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	n, err := subsnorm.New(
		subsnorm.WithRuleOptions(cfg.Normalize.RuleOptions()),
		subsnorm.WithVerifyYAML(cfg.Normalize.VerifyYAML),
		subsnorm.WithWorkers(cfg.Workers),
		subsnorm.WithPortsLogger(lg),
	)
	if err != nil {
		lg.Close()
		return nil, nil, nil, err
	}
	return cfg, lg, n, nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", key, err)
	}
}
