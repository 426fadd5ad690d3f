package repository

import (
	"context"

	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// DishRepository define el puerto de persistencia para platos.
type DishRepository interface {
	Create(ctx context.Context, d *entity.Dish) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Dish, error)
	GetByIDs(ctx context.Context, tenantID string, ids []string) (map[string]*entity.Dish, error)
	List(ctx context.Context, tenantID, clientID string, includeArchived bool) ([]*entity.Dish, error)
	CountActive(ctx context.Context, tenantID string) (int, error)
	Update(ctx context.Context, d *entity.Dish) error
	Archive(ctx context.Context, tenantID, clientID, id string) (bool, error)
}
