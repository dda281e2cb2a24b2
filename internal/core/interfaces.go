package core

import (
	"context"

	"github.com/Evgen-Mutagen/paymentref/internal/model"
	"github.com/Evgen-Mutagen/paymentref/pkg/paymentref"
)

type (
	ReferenceService interface {
		Validate(ctx context.Context, value string) paymentref.Result
		ValidateBatch(ctx context.Context, values []string) []paymentref.Result
		Stats(ctx context.Context) ([]*model.SchemeStat, error)
		FlushStats(ctx context.Context) error
	}

	TokenValidator interface {
		ValidateToken(tokenString string) (string, error)
	}
)
