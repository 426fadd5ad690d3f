package invoice

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-restaurante-api/internal/domain"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/repository"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ContentType del artefacto subido.
const ContentType = "application/pdf"

// Artifact factura guardada: ruta en el almacenamiento y URL firmada de lectura.
type Artifact struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Document datos que necesita el renderizador.
type Document struct {
	Tenant  *entity.Tenant
	Order   *entity.Order
	TaxRate decimal.Decimal
}

// Renderer dibuja la factura en PDF.
type Renderer interface {
	RenderInvoice(ctx context.Context, doc Document) ([]byte, error)
}

// Storage almacenamiento de objetos con URLs firmadas.
type Storage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Service genera la factura de una orden, la sube y entrega su URL temporal.
type Service struct {
	orderRepo  repository.OrderRepository
	tenantRepo repository.TenantRepository
	renderer   Renderer
	storage    Storage
	taxRate    decimal.Decimal
	log        *logger.Logger
}

// NewService construye el servicio. Sin storage solo se puede renderizar.
func NewService(
	orderRepo repository.OrderRepository,
	tenantRepo repository.TenantRepository,
	renderer Renderer,
	storage Storage,
	defaultTaxRate decimal.Decimal,
	log *logger.Logger,
) *Service {
	return &Service{
		orderRepo:  orderRepo,
		tenantRepo: tenantRepo,
		renderer:   renderer,
		storage:    storage,
		taxRate:    defaultTaxRate,
		log:        log.Component("invoice"),
	}
}

// ObjectKey ruta del PDF dentro del bucket.
func ObjectKey(tenantID, orderID string) string {
	return fmt.Sprintf("tenant_%s/orders/invoice_%s.pdf", tenantID, orderID)
}

// Generate renderiza, sube y firma la factura de la orden.
func (s *Service) Generate(ctx context.Context, tenantID, orderID string) (*Artifact, error) {
	if s.storage == nil {
		return nil, domain.Conflict("INVOICE_STORAGE_DISABLED", "Almacenamiento de facturas no configurado")
	}
	pdf, err := s.Render(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	key := ObjectKey(tenantID, orderID)
	if err := s.storage.Upload(ctx, key, pdf, ContentType); err != nil {
		return nil, fmt.Errorf("upload invoice: %w", err)
	}
	url, err := s.storage.PresignGet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign invoice: %w", err)
	}
	s.log.Info().Str("tenant_id", tenantID).Str("order_id", orderID).Str("path", key).Int("bytes", len(pdf)).
		Msg("factura generada")
	return &Artifact{Path: key, URL: url}, nil
}

// Render PDF de la factura en memoria.
func (s *Service) Render(ctx context.Context, tenantID, orderID string) ([]byte, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.NotFound("TENANT_NOT_FOUND", "Tenant no encontrado")
	}
	o, err := s.orderRepo.GetByID(ctx, tenantID, "", orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("ORDER_NOT_FOUND", "Orden no encontrada")
	}
	rate := s.taxRate
	if tenant.Features.Tax.Rate != nil {
		rate = *tenant.Features.Tax.Rate
	}
	pdf, err := s.renderer.RenderInvoice(ctx, Document{Tenant: tenant, Order: o, TaxRate: rate})
	if err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return pdf, nil
}

// PresignURL nueva URL temporal para una factura ya subida.
func (s *Service) PresignURL(ctx context.Context, path string) (string, error) {
	if s.storage == nil {
		return "", domain.Conflict("INVOICE_STORAGE_DISABLED", "Almacenamiento de facturas no configurado")
	}
	return s.storage.PresignGet(ctx, path)
}
