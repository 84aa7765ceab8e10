// Command actorhostd runs a standalone actorhost process: it loads a
// Config, builds a Host, spawns a small demo root actor, and blocks until
// an interrupt or SIGTERM triggers a graceful shutdown.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/infoton-run/actorhost/actor"
	"github.com/infoton-run/actorhost/internal/config"
	"github.com/infoton-run/actorhost/internal/runtime"
)

var cfgFile string
var schedulerOverride int

var rootCmd = &cobra.Command{
	Use:   "actorhostd",
	Short: "Run an actorhost scheduler pool",
	Long: `actorhostd constructs an actor Host from a config file and/or
ACTORHOST_ environment variables, spawns a demo root actor that logs
every message it receives, and runs until interrupted.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().IntVar(&schedulerOverride, "schedulers", 0, "override scheduler_count from the config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if schedulerOverride > 0 {
		cfg.SchedulerCount = schedulerOverride
	}

	h := runtime.NewHost(cfg, logger, nil)

	addr, err := h.SpawnRoot(&echoActor{logger: logger})
	if err != nil {
		return fmt.Errorf("spawning root actor: %w", err)
	}
	logger.Info("actorhostd starting", "root", addr, "schedulers", cfg.SchedulerCount)

	done := make(chan struct{})
	go func() {
		h.Run(false, false)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	h.Shutdown()
	<-done

	logger.Info("actorhostd stopped")
	return nil
}

// echoActor is a minimal demonstration actor: it logs when it is scheduled
// and the kind of every body it receives, and does nothing else. Useful for confirming a Host is
// actually routing messages end to end.
type echoActor struct {
	core   actor.Core
	logger *slog.Logger
}

func (a *echoActor) Core() *actor.Core { return &a.core }

func (a *echoActor) OnMessage(svc actor.Service, body actor.Body) error {
	a.logger.Info("echo actor received message", "kind", actor.BodyKind(body))
	return nil
}

func (a *echoActor) OnSchedule(svc actor.Service) error {
	a.logger.Info("echo actor scheduled", "address", a.core.Address())
	return nil
}

var (
	_ actor.Actor       = (*echoActor)(nil)
	_ actor.Schedulable = (*echoActor)(nil)
)
