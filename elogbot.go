// Copyright 2016 Florin Pățan
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command elogbot
//
// This is a Slack bot that reads and posts entries of an electronic logbook.
//
// Mention the bot with "/help" to get the list of commands. The bot reads its
// configuration from elog.conf, every key can be overridden with an
// environment variable of the same name.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlopes/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/lsst/elogbot/bot"
	"github.com/lsst/elogbot/config"
	"github.com/lsst/elogbot/elog"
	"github.com/lsst/elogbot/handlers"
)

var (
	botVersion = "HEAD"

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "elogbot",
	Short: "Slack bot for the electronic logbook",
	Long: `elogbot listens for messages that mention it and turns them into
logbook operations: "/get 42" shows an entry, "/listcat" and "/listtags" list
categories and tags, anything else is posted to the logbook.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg, logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "My version is: %s\n", botVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default \""+config.DefaultPath+"\")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	api := slack.New(cfg.SlackToken)

	botID, err := bot.ResolveID(ctx, api, cfg.BotID)
	if err != nil {
		return err
	}
	logger.Info("initialized", zap.String("bot_id", botID), zap.String("version", botVersion))

	rtm := api.NewRTM()
	go rtm.ManageConnection()
	defer rtm.Disconnect()

	logbook := elog.New(cfg.ElogURL, cfg.XMLUser, cfg.XMLPassword, &http.Client{Timeout: cfg.HTTPTimeout})
	router := handlers.NewRouter(handlers.Config{
		Categories:    cfg.ChannelCategories,
		Aliases:       cfg.CategoryAliases,
		PermalinkBase: cfg.PermalinkBaseURL,
	}, logbook, bot.NewSlackDirectory(api, logger), logger.Named("router"))

	b := bot.New(bot.Options{
		ID:           botID,
		PollInterval: cfg.PollInterval,
		DevMode:      cfg.DevMode,
	},
		bot.NewRTMSource(rtm, cfg.ReadWait, logger),
		router,
		bot.NewSlackResponder(api),
		logger.Named("bot"),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(ctx)
	})

	if cfg.HealthAddr != "" {
		srv := &http.Server{Addr: cfg.HealthAddr, Handler: newHealthRouter(botVersion)}
		g.Go(func() error {
			logger.Info("health server listening", zap.String("addr", cfg.HealthAddr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}
