/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomoncle/memberquery"
	"github.com/tomoncle/memberquery/api"
	"github.com/tomoncle/memberquery/database"
	"github.com/tomoncle/memberquery/utils"
)

type globalFlags struct {
	configPath string
}

func rootCmd() *cobra.Command {
	var flags globalFlags
	cmd := &cobra.Command{
		Use:          "memberquery",
		Short:        "member/team search service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c",
		utils.EnvDefaultString("MEMBERQUERY_CONFIG", "configs/config.yaml"), "path to the YAML configuration")

	cmd.AddCommand(serveCmd(&flags), migrateCmd(&flags), seedCmd(&flags))
	return cmd
}

// loadConfig reads the file, applies environment overrides and configures
// the loggers.
func loadConfig(flags *globalFlags) (*database.Config, error) {
	cfg, err := database.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	database.ApplyEnvOverrides(cfg)
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)
	return cfg, nil
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the member search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := database.InitDB(ctx, cfg); err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			server := api.NewServer(memberquery.NewMemberService(), cfg.QueryPolicy, database.GetHealthStatus)
			return serve(ctx, addr, server.Router())
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", utils.EnvDefaultString("HTTP_ADDR", ":8080"), "listen address")
	return cmd
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	logger := utils.NewLogger("MAIN")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create the schema and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if _, err := database.InitDatabaseWithOptions(cmd.Context(), cfg, true); err != nil {
				return err
			}
			return database.CloseDB()
		},
	}
}

func seedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "load the sample teams and members",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if _, err := database.InitDB(cmd.Context(), cfg); err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()
			return memberquery.NewMemberService().Seed(cmd.Context())
		},
	}
}
