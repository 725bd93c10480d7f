package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/internal/store"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
	"github.com/bajehapp/bajeh_backend/pkg/database"
	"github.com/bajehapp/bajeh_backend/pkg/email"
	"github.com/bajehapp/bajeh_backend/pkg/logs"
	"github.com/bajehapp/bajeh_backend/pkg/observability"
	redispkg "github.com/bajehapp/bajeh_backend/pkg/redis"
	"github.com/bajehapp/bajeh_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideDB),
	fx.Provide(ProvideTicketStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideDirectory),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logs.New(cfg)
	slog.SetDefault(logger)
	return logger
}

func ProvideDB(lc fx.Lifecycle, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, nil
}

func ProvideTicketStore(db *sql.DB) store.TicketStore {
	return store.NewPostgres(db)
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(cfg *config.Config) (authorize.IAuthorization, error) {
	enforcer, err := authorize.NewEnforcer(
		cfg.Authorization.CasbinModelPath,
		cfg.Authorization.CasbinPolicyPath,
	)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	if cfg.Authorization.SeedDefaults {
		if err := authorize.SeedDefaultPolicies(context.Background(), auth); err != nil {
			return nil, err
		}
	}
	return auth, nil
}

// ProvideDirectory picks the external identity directory when one is
// configured, otherwise the in-memory directory used in development.
func ProvideDirectory(cfg *config.Config) identity.Directory {
	if cfg.Identity.BaseURL != "" {
		return identity.NewHTTPDirectory(cfg.Identity)
	}
	return identity.NewMemoryDirectory()
}

func ProvideEmailClient(cfg *config.Config) *email.Client {
	return email.NewFromConfig(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.Init(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
