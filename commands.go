package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mfg/config"
	"mfg/loader"
	"mfg/logging"
	"mfg/respond"
	"mfg/units"
	"mfg/workorder"
)

type rootOptions struct {
	ConfigPath string
	Verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mfg",
		Short:         "製造管理サーバー (製品マスタ・工艺流程・工单)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.FilePath, "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newInitDBCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newImportDetailsCommand(opts))
	cmd.AddCommand(newGenerateDetailsCommand(opts))
	return cmd
}

// bootstrap は設定・ロガー・データベースを準備します。戻り値の関数で後始末します。
func bootstrap(opts *rootOptions) (*sqlx.DB, func(), error) {
	config.FilePath = opts.ConfigPath
	cfg, cfgErr := config.LoadConfig()

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	flush, err := logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	if cfgErr != nil {
		zap.S().Warnw("Failed to load config file, using defaults", "path", opts.ConfigPath, "error", cfgErr)
	}

	zap.S().Infow("Connecting to database...", "path", cfg.DatabasePath)
	db, err := loader.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		flush()
		return nil, nil, err
	}
	if err := units.Refresh(context.Background(), db); err != nil {
		zap.S().Warnw("Failed to load unit master", "error", err)
	}
	return db, func() {
		db.Close()
		flush()
	}, nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP API サーバーを起動します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			return serve(cmd.Context(), db, config.GetConfig().ListenAddr)
		},
	}
}

func serve(ctx context.Context, db *sqlx.DB, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	SetupRoutes(mux, db)

	srv := &http.Server{
		Addr:              addr,
		Handler:           respond.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server start error: %w", err)
	case <-ctx.Done():
		zap.S().Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newInitDBCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "データベーススキーマを作成します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			zap.S().Info("Database initialization complete.")
			return nil
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "YAML のマスタデータを投入します",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := loader.LoadSeedFile(cmd.Context(), db, args[0]); err != nil {
				return err
			}
			if err := units.Refresh(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed loaded: %s\n", args[0])
			return nil
		},
	}
}

func newImportDetailsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-details <routing-id> <file.csv>",
		Short: "工艺明细 CSV (GBK) を工艺流程に取り込みます",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			processCodeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid routing id %q: %w", args[0], err)
			}
			db, cleanup, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			n, err := loader.LoadProcessDetailCSV(cmd.Context(), db, args[1], processCodeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows\n", n)
			return nil
		},
	}
}

func newGenerateDetailsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-details <workorder-id>",
		Short: "工单の工序明细を生成します",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid work order id %q: %w", args[0], err)
			}
			db, cleanup, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			n, err := workorder.NewService(db).GenerateDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d details\n", n)
			return nil
		},
	}
}
