package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"boutiquepos/internal/config"
	"boutiquepos/internal/infra"
	"boutiquepos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TicketJobPayload is the job envelope sent to QueueTickets.
type TicketJobPayload struct {
	VentaID      string `json:"venta_id"`
	ClienteEmail string `json:"cliente_email,omitempty"`
}

// TicketWorker renders a PDF receipt for a committed sale and, when the
// customer left an email, sends it as an attachment.
type TicketWorker struct {
	ventas repository.VentaRepository
	mailer *infra.Mailer
	cfg    *config.Config
}

func NewTicketWorker(ventas repository.VentaRepository, mailer *infra.Mailer, cfg *config.Config) *TicketWorker {
	return &TicketWorker{ventas: ventas, mailer: mailer, cfg: cfg}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("ticket_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	id, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("ticket_worker: invalid venta_id")
		return nil
	}

	venta, err := w.ventas.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ticket_worker: load venta %s: %w", payload.VentaID, err)
	}

	pdfPath, err := infra.GenerateTicketPDF(venta, w.cfg.NombreNegocio, w.cfg.PDFStoragePath)
	if err != nil {
		return fmt.Errorf("ticket_worker: generate pdf: %w", err)
	}
	log.Info().Str("venta_id", payload.VentaID).Str("path", pdfPath).Msg("ticket_worker: pdf generated")

	if payload.ClienteEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%s — Comprobante de compra", w.cfg.NombreNegocio)
	body := fmt.Sprintf("Gracias por su compra. Adjuntamos su comprobante por $%s.", venta.Total.StringFixed(2))
	if err := w.mailer.SendComprobante(payload.ClienteEmail, subject, body, pdfPath); err != nil {
		return fmt.Errorf("ticket_worker: send email: %w", err)
	}
	log.Info().Str("to", payload.ClienteEmail).Str("venta_id", payload.VentaID).Msg("ticket_worker: comprobante sent")
	return nil
}
