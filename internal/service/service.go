package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/storefront-catalog/internal/repository"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/outbox"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/ptr"
	"github.com/tuanvumaihuynh/storefront-catalog/pkg/validator"
)

// lookup resolves a product by slug first and by id second, so routes accept
// either form. A parameter that matches no slug and is not a UUID is not found.
func lookup[T any](ctx context.Context, idOrSlug string, bySlug func(context.Context, string) (T, error), byID func(context.Context, uuid.UUID) (T, error)) (T, error) {
	var zero T

	v, err := bySlug(ctx, idOrSlug)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("get by slug: %w", err)
	}

	id, parseErr := uuid.Parse(idOrSlug)
	if parseErr != nil {
		return zero, apperr.ProductNotFoundErr
	}

	v, err = byID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, apperr.ProductNotFoundErr
		}
		return zero, fmt.Errorf("get by id: %w", err)
	}

	return v, nil
}

func validate(v validator.Validator, params any) error {
	if err := v.Validate(params); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	return nil
}

func createOutboxMsg(ctx context.Context, repo repository.OutboxMsgRepository, topic, key string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := repo.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(key),
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
