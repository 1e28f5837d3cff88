package controllers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/atelier-bot/api/responses"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
)

const maxUpdateBytes = 1 << 20

// UpdateSink accepts raw Telegram updates for asynchronous handling.
type UpdateSink interface {
	DispatchUpdate(ctx context.Context, update tgbotapi.Update) bool
}

// TelegramWebhook acknowledges every well-formed update once it is queued.
func TelegramWebhook(secret string, sink UpdateSink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		got := chi.URLParam(r, "secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "not found"))
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "bad json"))
			return
		}

		sink.DispatchUpdate(context.WithoutCancel(ctx), update)
		responses.WriteAck(w)
	}
}
