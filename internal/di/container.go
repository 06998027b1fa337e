package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/redis/go-redis/v9"
	auditRepo "github.com/reshetovitsme/chat-guard/internal/modules/audit/repository"
	auditService "github.com/reshetovitsme/chat-guard/internal/modules/audit/service"
	banguard "github.com/reshetovitsme/chat-guard/internal/modules/banguard/service"
	escalation "github.com/reshetovitsme/chat-guard/internal/modules/escalation/service"
	executorRepo "github.com/reshetovitsme/chat-guard/internal/modules/executor/repository"
	executorService "github.com/reshetovitsme/chat-guard/internal/modules/executor/service"
	firewallRepo "github.com/reshetovitsme/chat-guard/internal/modules/firewall/repository"
	firewall "github.com/reshetovitsme/chat-guard/internal/modules/firewall/service"
	memberRepo "github.com/reshetovitsme/chat-guard/internal/modules/member/repository"
	memberService "github.com/reshetovitsme/chat-guard/internal/modules/member/service"
	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	policyRepo "github.com/reshetovitsme/chat-guard/internal/modules/policy/repository"
	policyService "github.com/reshetovitsme/chat-guard/internal/modules/policy/service"
	"github.com/reshetovitsme/chat-guard/internal/shared/config"
	"github.com/reshetovitsme/chat-guard/internal/shared/window"
	httpServer "github.com/reshetovitsme/chat-guard/internal/transport/http"
	natsSubscriber "github.com/reshetovitsme/chat-guard/internal/transport/nats"
	telegramHandler "github.com/reshetovitsme/chat-guard/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Repositories
	do.Provide(injector, func(i do.Injector) (*policyRepo.FileStorage, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := policyRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize policy repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (firewallRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := firewallRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize firewall repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (memberRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := memberRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize member repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (executorRepo.PendingStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := executorRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize pending repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (auditRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := auditRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize audit repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Redis Client
	do.Provide(injector, func(i do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, oops.With("context", "invalid redis url").Wrap(err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, oops.With("context", "failed to reach redis").Wrap(err)
		}
		return rdb, nil
	})

	// Register Sliding Window Store
	do.Provide(injector, func(i do.Injector) (window.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.WindowBackend != "redis" {
			return window.NewMemoryStore(), nil
		}
		rdb, err := do.Invoke[*redis.Client](i)
		if err != nil {
			return nil, err
		}
		return window.NewRedisStore(rdb), nil
	})

	// Register Telegram Platform
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Platform, error) {
		return telegramHandler.NewPlatform(), nil
	})

	// Register Member Service
	do.Provide(injector, func(i do.Injector) (*memberService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[memberRepo.Repository](i)
		platform := do.MustInvoke[*telegramHandler.Platform](i)
		return memberService.New(repo, platform, time.Duration(cfg.NewMemberWindowMinutes)*time.Minute), nil
	})

	// Register Policy Cache
	do.Provide(injector, func(i do.Injector) (*policyService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[*policyRepo.FileStorage](i)
		members := do.MustInvoke[*memberService.Service](i)
		return policyService.New(repo, members, policyService.Options{
			StoreAvailable: cfg.StoreAvailable,
			TTL: map[policydomain.SettingsGroup]time.Duration{
				policydomain.SettingsGroupBanRules:     config.TTL(cfg.BanRulesTTLSeconds),
				policydomain.SettingsGroupGeneral:      config.TTL(cfg.GeneralTTLSeconds),
				policydomain.SettingsGroupSilence:      config.TTL(cfg.SilenceTTLSeconds),
				policydomain.SettingsGroupLimits:       config.TTL(cfg.LimitsTTLSeconds),
				policydomain.SettingsGroupCapabilities: config.TTL(cfg.CapabilitiesTTLSeconds),
			},
		}), nil
	})

	// Register Evaluators
	do.Provide(injector, func(i do.Injector) (*escalation.Tracker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return escalation.New(time.Duration(cfg.HousekeepingIntervalSeconds) * time.Second), nil
	})

	do.Provide(injector, func(i do.Injector) (*banguard.Evaluator, error) {
		return banguard.New(do.MustInvoke[window.Store](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*firewall.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[firewallRepo.Repository](i)
		tracker := do.MustInvoke[*escalation.Tracker](i)
		return firewall.New(repo, tracker, config.TTL(cfg.RuleCacheTTLSeconds)), nil
	})

	// Register Audit Service
	do.Provide(injector, func(i do.Injector) (*auditService.Service, error) {
		return auditService.New(do.MustInvoke[auditRepo.Repository](i)), nil
	})

	// Register Action Executor
	do.Provide(injector, func(i do.Injector) (*executorService.Executor, error) {
		platform := do.MustInvoke[*telegramHandler.Platform](i)
		return executorService.New(platform, executorService.Options{
			GroupState:  do.MustInvoke[*policyRepo.FileStorage](i),
			Pending:     do.MustInvoke[executorRepo.PendingStore](i),
			Audit:       do.MustInvoke[*auditService.Service](i),
			Invalidator: do.MustInvoke[*policyService.Service](i),
		}), nil
	})

	// Register Moderation Pipeline
	do.Provide(injector, func(i do.Injector) (*moderation.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return moderation.New(
			do.MustInvoke[*policyService.Service](i),
			do.MustInvoke[*memberService.Service](i),
			do.MustInvoke[*banguard.Evaluator](i),
			do.MustInvoke[*firewall.Engine](i),
			do.MustInvoke[*executorService.Executor](i),
			moderation.Options{FirstMatchOnly: cfg.FirstMatchOnly},
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*moderation.Invalidator, error) {
		return moderation.NewInvalidator(
			do.MustInvoke[*policyService.Service](i),
			do.MustInvoke[*firewall.Engine](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*moderation.Housekeeping, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return moderation.NewHousekeeping(
			do.MustInvoke[window.Store](i),
			do.MustInvoke[*escalation.Tracker](i),
			do.MustInvoke[*memberService.Service](i),
			time.Duration(cfg.HousekeepingIntervalSeconds)*time.Second,
			time.Duration(cfg.WindowIdleMinutes)*time.Minute,
		), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		return telegramHandler.New(
			do.MustInvoke[*moderation.Service](i),
			do.MustInvoke[*memberService.Service](i),
			do.MustInvoke[*executorService.Executor](i),
			do.MustInvoke[*policyService.Service](i),
			do.MustInvoke[*telegramHandler.Platform](i),
		), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		server := httpServer.New(
			cfg,
			do.MustInvoke[*auditService.Service](i),
			do.MustInvoke[*moderation.Invalidator](i),
			do.MustInvoke[firewallRepo.Repository](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register NATS Subscriber, nil when no NATS URL is configured
	do.Provide(injector, func(i do.Injector) (*natsSubscriber.Subscriber, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.NATSURL == "" {
			return nil, nil
		}
		sub, err := natsSubscriber.Connect(cfg.NATSURL, do.MustInvoke[*moderation.Invalidator](i))
		if err != nil {
			return nil, err
		}
		if err := sub.Subscribe(cfg.NATSInvalidateSubject); err != nil {
			sub.Close()
			return nil, err
		}
		return sub, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
			bot.WithServerURL(cfg.TelegramAPIURL),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Attach the bot to the platform adapter
		platform := do.MustInvoke[*telegramHandler.Platform](i)
		if err := platform.SetBot(context.Background(), b); err != nil {
			return nil, err
		}

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Failed to shut down HTTP server", "error", err)
		}
	}

	if sub, err := do.Invoke[*natsSubscriber.Subscriber](injector); err == nil && sub != nil {
		sub.Close()
	}

	if housekeeping, err := do.Invoke[*moderation.Housekeeping](injector); err == nil && housekeeping != nil {
		housekeeping.Stop()
	}

	if executor, err := do.Invoke[*executorService.Executor](injector); err == nil && executor != nil {
		executor.Close()
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err == nil && cfg.WindowBackend == "redis" {
		if rdb, err := do.Invoke[*redis.Client](injector); err == nil {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close redis client", "error", err)
			}
		}
	}

	return nil
}
