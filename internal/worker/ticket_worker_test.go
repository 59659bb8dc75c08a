package worker

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"boutiquepos/internal/config"
	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) UpdateVisible(_ context.Context, _ uuid.UUID, _ bool) error { return nil }

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	return nil, 0, nil
}

func (r *stubVentaRepo) DeleteTx(_ context.Context, _ *gorm.DB, _ uuid.UUID) error { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func newTicketWorkerFixture(t *testing.T) (*stubVentaRepo, *TicketWorker, string) {
	t.Helper()
	dir := t.TempDir()
	repo := &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
	cfg := &config.Config{NombreNegocio: "Boutique Central", PDFStoragePath: dir}
	return repo, NewTicketWorker(repo, nil, cfg), dir
}

func TestTicketWorkerGeneraPDF(t *testing.T) {
	repo, w, dir := newTicketWorkerFixture(t)

	cliente := "Maria Lopez"
	venta := &model.Venta{
		ID:         uuid.New(),
		SucursalID: uuid.New(),
		UsuarioID:  uuid.New(),
		Cliente:    &cliente,
		MetodoPago: "efectivo",
		Total:      decimal.NewFromInt(900),
		CreatedAt:  time.Now(),
		Items: []model.VentaItem{
			{ProductoID: uuid.New(), Cantidad: 2, PrecioUnitario: decimal.NewFromInt(450), Subtotal: decimal.NewFromInt(900)},
		},
	}
	repo.ventas[venta.ID] = venta

	raw, err := json.Marshal(TicketJobPayload{VentaID: venta.ID.String()})
	require.NoError(t, err)
	require.NoError(t, w.Process(context.Background(), raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "ticket_")
}

func TestTicketWorkerPayloadInvalido(t *testing.T) {
	_, w, dir := newTicketWorkerFixture(t)

	// Malformed payloads must not be retried.
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{no es json`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"venta_id":"no-es-uuid"}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTicketWorkerVentaInexistente(t *testing.T) {
	_, w, _ := newTicketWorkerFixture(t)

	raw, err := json.Marshal(TicketJobPayload{VentaID: uuid.NewString()})
	require.NoError(t, err)

	// A missing sale is a real failure: the pool should retry it.
	err = w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
