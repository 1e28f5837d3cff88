package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/api/controllers"
	"github.com/angelmondragon/atelier-bot/internal/cart"
	"github.com/angelmondragon/atelier-bot/internal/catalog"
	"github.com/angelmondragon/atelier-bot/internal/checkout"
	"github.com/angelmondragon/atelier-bot/internal/conversation"
	"github.com/angelmondragon/atelier-bot/internal/notify"
	"github.com/angelmondragon/atelier-bot/internal/orders"
	"github.com/angelmondragon/atelier-bot/internal/payments"
	"github.com/angelmondragon/atelier-bot/internal/session"
	"github.com/angelmondragon/atelier-bot/internal/sheets"
	"github.com/angelmondragon/atelier-bot/internal/telegram"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/angelmondragon/atelier-bot/pkg/db"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
	"github.com/angelmondragon/atelier-bot/pkg/metrics"
	"github.com/angelmondragon/atelier-bot/pkg/migrate"
	"github.com/angelmondragon/atelier-bot/pkg/pubsub"
	"github.com/angelmondragon/atelier-bot/pkg/redis"
)

type closer interface {
	Close() error
}

// bot holds the wired components and the resources to release on shutdown.
type bot struct {
	engine   *conversation.Engine
	telegram *telegram.Client
	pingers  map[string]controllers.Pinger
	closers  []namedCloser
	logg     *logger.Logger
}

type namedCloser struct {
	name string
	c    closer
}

func (b *bot) track(name string, c closer) {
	b.closers = append(b.closers, namedCloser{name: name, c: c})
}

// close releases resources in reverse acquisition order.
func (b *bot) close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		nc := b.closers[i]
		if err := nc.c.Close(); err != nil {
			b.logg.Error(b.logg.WithField(ctx, "resource", nc.name), "error closing resource", err)
		}
	}
}

func build(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.BotMetrics) (_ *bot, err error) {
	app := &bot{logg: logg, pingers: map[string]controllers.Pinger{}}
	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		app.track("redis", redisClient)
		app.pingers["redis"] = redisClient
	}

	var dbClient *db.Client
	if cfg.UsesDB() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		app.track("database", dbClient)
		app.pingers["database"] = dbClient
		if err = migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	var sheetsClient *sheets.Client
	if cfg.UsesSheets() {
		sheetsClient, err = sheets.New(ctx, cfg.Sheets, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap sheets: %w", err)
		}
		app.pingers["sheets"] = sheetsClient
	}

	source, err := catalogSource(cfg, sheetsClient, dbClient)
	if err != nil {
		return nil, err
	}
	cache, err := catalog.NewCache(source, catalog.Options{TTL: cfg.Catalog.TTL, Logger: logg, Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}

	cartStore, err := newStore[cart.Cart](cfg, redisClient, session.NamespaceCart)
	if err != nil {
		return nil, err
	}
	checkoutStore, err := newStore[checkout.Checkout](cfg, redisClient, session.NamespaceCheckout)
	if err != nil {
		return nil, err
	}
	pendingStore, err := newStore[conversation.Pending](cfg, redisClient, session.NamespacePending)
	if err != nil {
		return nil, err
	}

	carts, err := cart.NewService(cartStore)
	if err != nil {
		return nil, fmt.Errorf("create cart service: %w", err)
	}
	checkouts, err := checkout.NewMachine(checkoutStore)
	if err != nil {
		return nil, fmt.Errorf("create checkout machine: %w", err)
	}

	store, err := orderStore(cfg, sheetsClient, dbClient)
	if err != nil {
		return nil, err
	}

	app.telegram, err = telegram.New(cfg.Telegram, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap telegram: %w", err)
	}

	notifier, err := notify.NewNotifier(app.telegram, cfg.Operators.IDs(), cache, logg, m)
	if err != nil {
		return nil, fmt.Errorf("create notifier: %w", err)
	}
	if len(cfg.Operators.IDs()) == 0 {
		logg.Warn(ctx, "no operators configured, orders will not be forwarded")
	}

	var events orders.EventPublisher
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap pubsub: %w", err)
		}
		app.track("pubsub", psClient)
		app.pingers["pubsub"] = psClient
		pub, err := orders.NewPubSubEvents(psClient.OrdersPublisher())
		if err != nil {
			return nil, fmt.Errorf("create order events: %w", err)
		}
		events = pub
	}

	finalizer, err := orders.NewFinalizer(orders.Deps{
		Carts:     carts,
		Checkouts: checkouts,
		Store:     store,
		Payments:  payments.NewPayPalMe(cfg.Payment.Handle()),
		Notifier:  notifier,
		Events:    events,
		Logger:    logg,
		Metrics:   m,
	})
	if err != nil {
		return nil, fmt.Errorf("create finalizer: %w", err)
	}

	deduper, err := newDeduper(cfg, redisClient)
	if err != nil {
		return nil, err
	}

	app.engine, err = conversation.NewEngine(conversation.Deps{
		Catalog:   cache,
		Carts:     carts,
		Checkouts: checkouts,
		Pending:   pendingStore,
		Finalizer: finalizer,
		Operators: notifier,
		Messenger: app.telegram,
		Locker:    session.NewLocker(),
		Deduper:   deduper,
		Logger:    logg,
		Metrics:   m,
	}, conversation.Options{
		PageSize:               cfg.Catalog.PageSize,
		CancelCheckoutOnBrowse: cfg.Checkout.CancelOnBrowse,
		SupportURL:             cfg.Operators.SupportURL,
		AdminUsername:          cfg.Operators.Username(),
		Operators:              cfg.Operators.IDs(),
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation engine: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"catalog_source":  cfg.Catalog.Source,
		"order_store":     cfg.Orders.Store,
		"session_backend": cfg.Session.Backend,
		"dedup":           cfg.Dedup.Enabled,
		"bot":             app.telegram.Username(),
	}), "bot wired")
	return app, nil
}

func catalogSource(cfg *config.Config, sheetsClient *sheets.Client, dbClient *db.Client) (catalog.Source, error) {
	if cfg.Catalog.Source == config.BackendDB {
		src, err := catalog.NewSQLSource(dbClient.DB())
		if err != nil {
			return nil, fmt.Errorf("create sql catalog source: %w", err)
		}
		return src, nil
	}
	src, err := sheets.NewProductSource(sheetsClient, cfg.Sheets.ProductsTab)
	if err != nil {
		return nil, fmt.Errorf("create sheet catalog source: %w", err)
	}
	return src, nil
}

func orderStore(cfg *config.Config, sheetsClient *sheets.Client, dbClient *db.Client) (orders.Store, error) {
	if cfg.Orders.Store == config.BackendDB {
		store, err := orders.NewSQLStore(dbClient.DB())
		if err != nil {
			return nil, fmt.Errorf("create sql order store: %w", err)
		}
		return store, nil
	}
	store, err := sheets.NewOrderStore(sheetsClient, cfg.Sheets.OrdersTab)
	if err != nil {
		return nil, fmt.Errorf("create sheet order store: %w", err)
	}
	return store, nil
}

func newStore[T any](cfg *config.Config, redisClient *redis.Client, namespace string) (session.Store[T], error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore[T](), nil
	}
	if redisClient == nil {
		return nil, fmt.Errorf("create %s session store: redis client required", namespace)
	}
	store, err := session.NewRedisStore[T](redisClient, namespace, cfg.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("create %s session store: %w", namespace, err)
	}
	return store, nil
}

func newDeduper(cfg *config.Config, redisClient *redis.Client) (conversation.Deduper, error) {
	switch {
	case !cfg.Dedup.Enabled:
		return nil, nil
	case cfg.DedupUsesRedis():
		if redisClient == nil {
			return nil, fmt.Errorf("create deduper: redis client required")
		}
		d, err := conversation.NewRedisDeduper(redisClient, cfg.Dedup.TTL)
		if err != nil {
			return nil, fmt.Errorf("create deduper: %w", err)
		}
		return d, nil
	default:
		return conversation.NewMemoryDeduper(cfg.Dedup.TTL, nil), nil
	}
}
