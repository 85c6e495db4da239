package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/patrickjm/yapl"
	"github.com/patrickjm/yapl/cache"
	rediscache "github.com/patrickjm/yapl/cache/redis"
	"github.com/patrickjm/yapl/core"
	"github.com/patrickjm/yapl/logging"
	"github.com/patrickjm/yapl/provider/anthropic"
	"github.com/patrickjm/yapl/provider/openai"
)

var (
	runInputs    []string
	runProvider  string
	runModel     string
	runRedisAddr string
	runCacheTTL  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <file.yaml>",
	Short: "Execute a YAPL document",
	Long: `Parses, validates and executes the given document. Providers are
registered from the environment: "openai" when OPENAI_API_KEY is set and
"anthropic" when ANTHROPIC_API_KEY is set. The result is printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := parseInputs(runInputs)
		if err != nil {
			return err
		}

		y := yapl.New(func(o *yapl.Options) {
			o.Logger = newLogger()
			o.DefaultProvider = runProvider
			if runModel != "" {
				o.DefaultModel = core.Model{Name: runModel}
			}
			if runRedisAddr != "" {
				o.Cache = newRedisCache()
			}
			registerProviders(o)
		})

		result, err := y.RunFile(cmd.Context(), args[0], inputs)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil, "caller input as key=value (repeatable)")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "default provider name")
	runCmd.Flags().StringVar(&runModel, "model", "", "default model name")
	runCmd.Flags().StringVar(&runRedisAddr, "redis", "", "redis address for the response cache (default: in-memory)")
	runCmd.Flags().DurationVar(&runCacheTTL, "cache-ttl", 0, "expiration for redis-cached responses (0 = never)")
	rootCmd.AddCommand(runCmd)
}

func registerProviders(o *yapl.Options) {
	if os.Getenv("OPENAI_API_KEY") != "" {
		o.Providers["openai"] = openai.New()
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		o.Providers["anthropic"] = anthropic.New(func(po *anthropic.Options) {
			po.APIKey = key
		})
	}
}

func newRedisCache() cache.Cache {
	return rediscache.New(runRedisAddr, os.Getenv("REDIS_PASSWORD"), 0,
		rediscache.WithTTL(runCacheTTL))
}

func newLogger() logging.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.NewLogger(logging.Config{Level: level, Format: "text", Output: os.Stderr})
}

func parseInputs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	inputs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input %q, expected key=value", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}
