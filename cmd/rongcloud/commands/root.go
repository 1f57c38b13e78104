package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yangxing-star/rongyun/internal/config"
	"github.com/yangxing-star/rongyun/internal/logger"
	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// clientFactory builds the API client once flags are parsed.
type clientFactory func(logLevel string) (*rongcloud.Client, error)

type state struct {
	logLevel  string
	timeout   time.Duration
	newClient clientFactory
}

func defaultClientFactory(logLevel string) (*rongcloud.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(cfg.App.Env, level)
	if err != nil {
		return nil, err
	}
	return rongcloud.NewClient(cfg.RongCloud, logger.Component(*log, "rongcloud-client"))
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(defaultClientFactory).ExecuteContext(ctx)
}

func newRootCmd(factory clientFactory) *cobra.Command {
	st := &state{newClient: factory}

	root := &cobra.Command{
		Use:          "rongcloud",
		Short:        "Call the RongCloud IM server API",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")
	root.PersistentFlags().DurationVar(&st.timeout, "timeout", 10*time.Second, "per-call timeout")

	root.AddCommand(
		actionsCmd(),
		signCmd(st),
		invokeCmd(st),
		tokenCmd(st),
		blacklistCmd(st),
	)
	return root
}

func (s *state) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
