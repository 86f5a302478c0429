// Command redust-server binds the TCP listener, wires the keyspace and its
// expiration sampler, and spawns one dispatcher per accepted connection.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SaadKaleem/redust/internal/dispatch"
	"github.com/SaadKaleem/redust/internal/respconn"
	"github.com/SaadKaleem/redust/internal/store"
)

const (
	defaultHost           = "127.0.0.1"
	defaultPort           = 6666
	defaultSampleInterval = 100 * time.Millisecond
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "redust-server",
		Short: "An in-memory key-value server speaking a RESP-like wire protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("host", defaultHost, "address to bind")
	flags.Int("port", defaultPort, "port to bind")
	flags.Duration("sample-interval", defaultSampleInterval, "expiration sampler tick interval")

	v.BindPFlags(flags)
	v.SetEnvPrefix("REDUST")
	v.AutomaticEnv()

	return cmd
}

func run(v *viper.Viper) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	addr := net.JoinHostPort(v.GetString("host"), fmt.Sprintf("%d", v.GetInt("port")))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	defer listener.Close()

	st := store.New()
	sampler := store.NewSampler(st, v.GetDuration("sample-interval"))
	go sampler.Run()
	defer sampler.Stop()

	logger.Info().Str("addr", addr).Msg("accepting inbound connections")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	shuttingDown := make(chan struct{})
	go func() {
		<-sigCh
		logger.Info().Msg("shutting down")
		close(shuttingDown)
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-shuttingDown:
				return nil
			default:
				logger.Error().Err(err).Msg("accept error")
				return err
			}
		}

		go dispatch.Handle(respconn.New(conn), st, logger)
	}
}
