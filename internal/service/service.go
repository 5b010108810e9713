package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/logging"
	"github.com/Skotchmaster/emoji_shop/internal/models"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
)

// ProductIndex mirrors the catalog into a search engine.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProducts(ctx context.Context, ids []uuid.UUID) error
	Search(ctx context.Context, query string) ([]uuid.UUID, error)
}

// publish is best effort: a failed publish never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key, typ string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, events.New(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", typ, "key", key, "error", err)
	}
}

// notFound turns a repository miss into the service sentinel.
func notFound(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return err
}
