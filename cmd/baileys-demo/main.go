// Command baileys-demo runs a scripted messaging session against an
// in-process socket, showing the lifecycle supervisor, pairing-code
// caching, auto-replies and the transcript relay in action.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	baileys "github.com/LeonWang2006/Baileys"
	"github.com/LeonWang2006/Baileys/credstore"
	"github.com/LeonWang2006/Baileys/kvcache"
)

var rootCmd = &cobra.Command{
	Use:           "baileys-demo",
	Short:         "Run a scripted multi-device messaging session.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runDemo,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("redis-addr", "", "redis address for the pairing cache (empty starts an embedded instance)")
	flags.Int("redis-db", 0, "redis logical database")
	flags.String("creds", "creds.json", "credential file path")
	flags.String("phone", "", "phone number for pairing-code login")
	flags.Bool("auto-reply", false, "reply to inbound messages with a canned text")
	flags.String("reply-text", "Hello there! This is an automated reply.", "auto-reply text")
	flags.Int("max-restarts", 0, "restart budget, 0 for unbounded")
	flags.Bool("verbose", false, "enable debug logging")

	viper.SetEnvPrefix("BAILEYS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)
}

func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "baileys-demo").Logger()
}

func runDemo(cmd *cobra.Command, _ []string) error {
	log := newLogger(viper.GetBool("verbose"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := viper.GetString("redis-addr")
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start embedded redis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		log.Info().Str("addr", addr).Msg("using embedded redis")
	}

	cache := kvcache.New(kvcache.Config{
		Addr: addr,
		DB:   viper.GetInt("redis-db"),
	}, log)
	if err := cache.Connect(ctx); err != nil {
		return fmt.Errorf("connect cache: %w", err)
	}
	defer func() { _ = cache.Disconnect() }()

	cfg := baileys.DefaultConfig()
	cfg.Cache.Addr = addr
	cfg.Supervisor.MaxRestarts = viper.GetInt("max-restarts")
	cfg.AutoReply.Enabled = viper.GetBool("auto-reply")
	cfg.AutoReply.Text = viper.GetString("reply-text")
	if phone := viper.GetString("phone"); phone != "" {
		cfg.Pairing.Enabled = true
		cfg.Pairing.PhoneNumber = phone
	}

	client, err := baileys.New().
		WithConfig(cfg).
		WithLogger(log).
		WithCache(cache).
		WithCredentialStore(credstore.NewFile(viper.GetString("creds"))).
		WithSocketFactory(newDemoFactory(log).build).
		WithTranscriptSink(baileys.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	defer client.Close()

	err = client.Run(ctx)
	switch {
	case errors.Is(err, baileys.ErrLoggedOut):
		log.Warn().Msg("device logged out; delete the credential file to pair again")
		return nil
	case errors.Is(err, context.Canceled):
		log.Info().Uint64("restarts", client.Restarts()).Msg("shutting down")
		return nil
	default:
		return err
	}
}

func main() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
