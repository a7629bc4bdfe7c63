package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
	"github.com/betsymikaodi/gestion-formation-api/pkg/storage"
)

// ReceiptLink points at a rendered receipt through a signed token.
type ReceiptLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReceiptService renders payment receipts to local storage and hands out
// signed download tokens so the PDF itself is fetched without a bearer token.
type ReceiptService struct {
	payments *PaymentService
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
}

// NewReceiptService constructs the receipt service.
func NewReceiptService(payments *PaymentService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{payments: payments, store: store, signer: signer, logger: logger}
}

// Prepare renders the receipt for a payment, stores it and returns a signed
// download link.
func (s *ReceiptService) Prepare(ctx context.Context, paymentID string) (*ReceiptLink, error) {
	doc, err := s.payments.Receipt(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("receipt-%s.pdf", paymentID)
	if _, err := s.store.Save(filename, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store receipt")
	}
	token, expiresAt, err := s.signer.Generate(paymentID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign receipt link")
	}
	return &ReceiptLink{Token: token, ExpiresAt: expiresAt}, nil
}

// Open validates a download token and returns the stored receipt content.
func (s *ReceiptService) Open(token string) ([]byte, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired receipt token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "receipt no longer available")
	}
	defer file.Close() //nolint:errcheck
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read receipt")
	}
	return raw, relPath, nil
}

// StartCleanup prunes stored receipts older than ttl on the given interval
// until the context is cancelled.
func (s *ReceiptService) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.store.CleanupOlderThan(ttl)
				if err != nil {
					s.logger.Warn("receipt cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("pruned stored receipts", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}
