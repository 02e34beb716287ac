package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lexcodex/hogar/agents"
	"github.com/lexcodex/hogar/llm"
	"github.com/lexcodex/hogar/server"
	"github.com/lexcodex/hogar/store"
	"github.com/lexcodex/hogar/tools"
)

// newServeCmd starts the HTTP API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			st, err := store.NewSQLiteStore(globalCfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			catalog, err := tools.NewCatalog(tools.Deps{
				Tasks:  st,
				Events: st,
				Inbox:  st,
			}, logger)
			if err != nil {
				return err
			}
			assembler := &agents.ContextAssembler{
				Tasks:    st,
				Events:   st,
				Inbox:    st,
				MaxItems: globalCfg.Context.MaxItemsPerSection,
			}
			client := llm.NewClient(&globalCfg.LLM)
			client.Debug = globalCfg.Logging.Debug
			orchestrator := agents.NewOrchestrator(client, catalog, st, assembler, logger)
			orchestrator.MaxHistoryTurns = globalCfg.Context.MaxHistoryTurns

			api := &server.APIServer{
				Orchestrator: orchestrator,
				Logger:       logger,
				TurnTimeout:  globalCfg.Server.TurnTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("starting hogard",
				zap.String("addr", globalCfg.Server.Addr),
				zap.String("model", globalCfg.LLM.Model))
			return api.ServeContext(ctx, globalCfg.Server.Addr)
		},
	}
}

func buildLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if globalCfg.Logging.Debug || globalCfg.Logging.Level == "debug" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
