package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/atelier-bot/api/controllers"
	"github.com/angelmondragon/atelier-bot/api/middleware"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

const webhookPrefix = "/webhook/"

// Deps are the collaborators the HTTP surface needs. Updates is nil in polling mode.
type Deps struct {
	Pingers  map[string]controllers.Pinger
	Updates  controllers.UpdateSink
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, redactWebhook),
	)

	r.Get("/", controllers.HealthLive(cfg))
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, deps.Pingers))

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.Updates != nil {
		r.Post(webhookPrefix+"{secret}", controllers.TelegramWebhook(cfg.Telegram.Secret(), deps.Updates, logg))
	}

	return r
}

func redactWebhook(path string) string {
	if strings.HasPrefix(path, webhookPrefix) {
		return webhookPrefix + "***"
	}
	return path
}
