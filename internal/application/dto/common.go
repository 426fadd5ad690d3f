package dto

// Tamaños de página de los listados.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest ?limit=&offset= de los listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage limit ausente o cero usa DefaultPageSize; offset negativo pasa a cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse página devuelta. HasMore es true cuando la página vino llena.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"hasMore"`
}

// NewPageResponse arma la página a partir de la cantidad de filas devueltas.
func NewPageResponse(p PageRequest, n int) PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset, Count: n, HasMore: n == p.Limit}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
