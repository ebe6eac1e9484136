package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/misterioso013/meu-orcamento-bot/internal/application"
	"github.com/misterioso013/meu-orcamento-bot/internal/config"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	aiAdapters "github.com/misterioso013/meu-orcamento-bot/internal/infra/adapters/ai"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/adapters/auth"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/adapters/rates"
	tele "github.com/misterioso013/meu-orcamento-bot/internal/infra/adapters/telegram"
	pg "github.com/misterioso013/meu-orcamento-bot/internal/infra/db/postgres"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/logging"
	red "github.com/misterioso013/meu-orcamento-bot/internal/infra/redis"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/web"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/worker"
	"github.com/misterioso013/meu-orcamento-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	txm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	stateRepo := red.NewStateRepo(redisClient, cfg.Redis.TTL)
	rateLimiter := red.NewRateLimiter(redisClient)
	chatLocker := red.NewLocker(redisClient)

	// ---- Repositories ----
	budgetRepo := pg.NewPostgresBudgetRepo(pool)
	messageRepo := pg.NewPostgresMessageRepo(pool)
	productRepo := pg.NewPostgresProductRepo(pool)
	orderRepo := pg.NewPostgresOrderRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)

	authorizer := auth.NewConfigAuthorizer(cfg.Bot.AdminID)

	// ---- Telegram adapter ----
	// Dev runs without a bot token use the noop adapter: outbound messages are
	// logged and polling is skipped, but the admin HTTP surface stays usable.
	var botPort adapter.TelegramBotAdapter
	var bot *tele.RealTelegramBotAdapter
	if cfg.Bot.Token == "" && cfg.Runtime.Dev {
		botPort = tele.NewNoopBotAdapter()
		logger.Warn().Msg("telegram adapter: noop (dev mode, no token configured)")
	} else {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, authorizer, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram adapter failed")
		}
		botPort = bot
	}

	// ---- AI adapter (Gemini -> OpenAI-compatible -> noop in dev) ----
	var ai adapter.AIAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: openai-compatible")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode, no key configured)")
	default:
		logger.Fatal().Msg("no AI provider configured: set ai.gemini_key or ai.openai_key")
	}

	rateProvider := rates.NewAwesomeRateProvider(cfg.Rates.URL)

	// ---- Worker pool ----
	sendPool := worker.NewPool(cfg.Bot.Workers, logger)
	sendPool.Start(ctx)
	defer sendPool.Stop()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, authorizer, logger)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, txm, botPort, authorizer, chatLocker, logger)
	relayUC := usecase.NewRelayUseCase(budgetRepo, messageRepo, botPort, authorizer, logger)
	intakeUC := usecase.NewIntakeUseCase(stateRepo, budgetUC, logger)
	proposalUC := usecase.NewProposalUseCase(budgetRepo, stateRepo, botPort, authorizer, logger)
	productUC := usecase.NewProductUseCase(productRepo, stateRepo, authorizer, logger)
	pricingUC := usecase.NewPricingUseCase(rateProvider, cfg.Rates.FallbackRate, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, productRepo, txm, pricingUC, botPort, authorizer, logger)
	analysisUC := usecase.NewAnalysisUseCase(budgetRepo, productRepo, stateRepo, ai, logger)
	broadcastUC := usecase.NewBroadcastUseCase(budgetRepo, stateRepo, botPort, authorizer, sendPool, logger)
	statsUC := usecase.NewStatsUseCase(budgetRepo, messageRepo, authorizer, logger)

	facade := application.NewBotFacade(
		userUC, budgetUC, relayUC, intakeUC, proposalUC,
		productUC, orderUC, analysisUC, broadcastUC, statsUC, pricingUC,
	)
	if bot != nil {
		bot.SetFacade(facade)
	}

	// ---- Admin HTTP server ----
	adminSrv := web.NewServer(budgetUC, productUC, orderUC, messageRepo, userRepo, cfg.Admin.APIKey, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Admin.Port)
		logger.Info().Str("addr", addr).Msg("admin http listening")
		if err := adminSrv.Start(ctx, addr); err != nil {
			logger.Error().Err(err).Msg("admin http stopped")
		}
	}()

	// ---- Telegram polling ----
	if bot != nil {
		go func() {
			if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	if bot != nil {
		bot.StopPolling()
	}
	cancel()
}
