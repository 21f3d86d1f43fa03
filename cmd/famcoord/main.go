package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/famcoord/famcoord/internal/calsync"
	"github.com/famcoord/famcoord/internal/cli"
	"github.com/famcoord/famcoord/internal/config"
	"github.com/famcoord/famcoord/internal/db"
	"github.com/famcoord/famcoord/internal/intelligence"
	"github.com/famcoord/famcoord/internal/llm"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/server"
	"github.com/famcoord/famcoord/internal/service"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env next to the binary is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	defaults, err := cfg.InterpreterDefaults()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.App.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	memberRepo := repository.NewSQLiteMemberRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Members:     service.NewMemberService(memberRepo, observer),
		Activities:  service.NewActivityService(activityRepo, observer),
		Exporter:    calsync.NewExporter(loc),
		Location:    loc,
		DefaultAddr: cfg.Server.Addr,
		SyncDays:    cfg.Calendar.Days,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// LLM-backed services are only wired when a provider is configured.
	var llmClient llm.LLMClient
	if cfg.LLM.Enabled {
		var llmObserver llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			llmObserver = llm.NewLogObserver(logger)
		}
		client, err := llm.NewClient(ctx, cfg.LLM, llmObserver)
		if err != nil {
			logger.Warn("llm unavailable, natural language features disabled", "error", err)
		} else {
			// Releases SDK-held connections (Gemini keeps a gRPC client).
			defer func() {
				if err := client.Close(); err != nil {
					logger.Warn("closing llm client", "error", err)
				}
			}()
			llmClient = client
		}
	}
	if llmClient != nil {
		prep := intelligence.NewPrepTaskService(llmClient, cfg.Features.PrepTasks)
		app.PrepTasks = prep
		app.Recommend = intelligence.NewRecommendService(llmClient, cfg.Features.Recommendations)
		app.Commands = service.NewCommandService(
			intelligence.NewInterpreter(intelligence.NewPromptedUnderstanding(llmClient), defaults),
			service.NewStoreSnapshot(memberRepo, activityRepo),
			uow,
			service.CommandOptions{
				Enabled:     cfg.Features.NaturalLanguage,
				Policy:      intelligence.ConfirmationPolicy{AutoApplyWrites: cfg.Features.AutoApply},
				DurationMin: cfg.Defaults.DurationMin,
				Location:    loc,
				PrepTasks:   prep,
				Logger:      logger,
			},
			observer,
		)
	}

	if cfg.Calendar.GoogleCredentialsFile != "" {
		app.ConnectGoogle = func(ctx context.Context) (cli.CalendarImporter, error) {
			auth, err := calsync.GoogleAuth(ctx, cfg.Calendar.GoogleCredentialsFile, cfg.Calendar.GoogleTokenFile)
			if err != nil {
				return nil, err
			}
			source, err := calsync.NewGoogleSource(ctx, cfg.Calendar.GoogleCalendarID, loc, logger, auth)
			if err != nil {
				return nil, err
			}
			return calsync.NewImporter(source, memberRepo, uow, loc, logger), nil
		}
	}
	if cfg.Calendar.CalDAVURL != "" {
		app.ConnectCalDAV = func(ctx context.Context) (cli.CalendarPublisher, error) {
			return calsync.NewCalDAVPublisher(ctx, calsync.CalDAVOptions{
				Endpoint: cfg.Calendar.CalDAVURL,
				Username: cfg.Calendar.CalDAVUser,
				Password: cfg.Calendar.CalDAVPassword,
				Calendar: cfg.Calendar.CalDAVCalendar,
			}, loc, logger)
		}
	}

	app.Serve = func(ctx context.Context, addr string) error {
		srv := server.New(server.Deps{
			Commands:    app.Commands,
			Members:     app.Members,
			Activities:  app.Activities,
			PrepTasks:   app.PrepTasks,
			Recommend:   app.Recommend,
			LLM:         llmClient,
			Logger:      logger,
			CORSOrigins: cfg.Server.CORSOrigins,
		})
		logger.Info("listening", "addr", addr, "llm", llmClient != nil, "timezone", loc.String())
		return srv.Run(ctx, addr)
	}

	start := time.Now()
	rootCmd := cli.NewRootCmd(app)
	err = rootCmd.ExecuteContext(ctx)
	logger.Debug("command finished", "duration_ms", time.Since(start).Milliseconds(), slog.Bool("ok", err == nil))
	return err
}
