// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"

	"github.com/google/uuid"

	"heritage/internal/models"
)

// Repository is the persistence collaborator of the editor. It performs
// whole-row reads and writes and is trusted for durability and uniqueness.
type Repository interface {
	// List returns every term of kind ordered by (sort_order, name).
	List(ctx context.Context, kind Kind) ([]models.Term, error)
	Insert(ctx context.Context, kind Kind, t *models.Term) (*models.Term, error)
	// Update writes all fields of t and returns the stored row.
	Update(ctx context.Context, kind Kind, t *models.Term) (*models.Term, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
}

// Swapper is implemented by repositories that can exchange the sort
// positions of two terms atomically. When absent, the editor issues two
// independent updates.
type Swapper interface {
	SwapPositions(ctx context.Context, kind Kind, a, b models.Term) error
}
