package service

import (
	"context"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
)

// ProductoService exposes the engine-owned read surface of the catalog plus
// the administrative stock adjust. Product creation and editing belong to the
// external catalog manager.
type ProductoService interface {
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	inventario InventarioService
}

func NewProductoService(repo repository.ProductoRepository, inventario InventarioService) ProductoService {
	return &productoService{repo: repo, inventario: inventario}
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if err := s.inventario.AjustarManual(ctx, id, req.Delta, req.Motivo); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Categoria:   p.Categoria,
		Precio:      p.Precio,
		StockActual: p.StockActual,
		SucursalID:  p.SucursalID.String(),
		Activo:      p.Activo,
	}
}
