package order

import (
	"github.com/jhoicas/pos-restaurante-api/internal/application/dto"
	"github.com/jhoicas/pos-restaurante-api/internal/domain/entity"
)

// ToOrderResponse mapea la orden a su DTO.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			DishID:     it.DishID,
			Name:       it.Name,
			QtyType:    it.QtyType,
			WeightUnit: it.WeightUnit,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price,
		})
	}
	f := o.Fiscal
	return &dto.OrderResponse{
		ID:            o.ID,
		Customer:      dto.CustomerResponse{Name: o.Customer.Name, Phone: o.Customer.Phone, Guests: o.Customer.Guests},
		Items:         items,
		OrderStatus:   o.Status,
		OrderSource:   o.Source,
		PaymentMethod: o.PaymentMethod,
		TableID:       o.TableID,
		UserID:        o.UserID,
		Bills: dto.BillsResponse{
			Subtotal:       o.Bills.Subtotal,
			Total:          o.Bills.Subtotal,
			Discount:       o.Bills.Discount,
			Tax:            o.Bills.Tax,
			TaxEnabled:     o.Bills.TaxEnabled,
			TotalBeforeTip: o.Bills.TotalBeforeTip,
			Tip:            o.Bills.Tip,
			TipAmount:      o.Bills.Tip,
			TotalWithTax:   o.Bills.TotalWithTax,
		},
		CommissionRate:   o.Commission.Rate,
		CommissionAmount: o.Commission.Amount,
		NetTotal:         o.Commission.Net,
		Fiscal: dto.FiscalResponse{
			Requested:      f.Requested,
			NCFType:        f.NCFType,
			NCFNumber:      f.NCFNumber,
			IssuedAt:       f.IssuedAt,
			ExpirationDate: f.ExpirationDate,
			InternalSeq:    f.InternalSeq,
			InternalNumber: f.InternalNumber,
			EmissionPoint:  f.EmissionPoint,
			BranchName:     f.BranchName,
			PrintedAt:      f.PrintedAt,
		},
		NCFNumber:         f.NCFNumber,
		InventoryDeducted: o.InventoryDeducted,
		InvoiceURL:        o.InvoiceURL,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
