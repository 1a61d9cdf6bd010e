package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/malnatis/order-export/internal/domain/export"
	"github.com/malnatis/order-export/internal/domain/shared"
)

// Setting keys read from the external config source.
const (
	settingLetterOrder = "pizzaPackSkuOrder"
	settingComboSKUs   = "comboSkus"
	settingGhostBins   = "ghostBins"
)

// Result is the outcome of handling one order event.
type Result string

const (
	// ResultProcessed means documents were built, delivered and committed.
	ResultProcessed Result = "processed"
	// ResultSkipped means the order was exported recently and the event
	// was suppressed. This is a normal early exit, not an error.
	ResultSkipped Result = "skipped"
	// ResultIgnored means the event does not trigger an export at all.
	ResultIgnored Result = "ignored"
)

// Config holds service tuning.
type Config struct {
	// Window is the duplicate-suppression window.
	Window time.Duration
	// EBridge identifies the trading parties on eBridge documents.
	EBridge export.EBridgeOptions
}

// Service runs the export pipeline end to end. One event is processed by a
// single worker; the only concurrency is the fan-out delivery of finished
// documents.
type Service struct {
	commerce  CommerceClient
	settings  SettingsSource
	processed shared.ProcessedOrderStore
	documents DocumentStore
	transfer  FileTransfer
	cfg       Config
	logger    *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewService creates the export service.
func NewService(
	commerce CommerceClient,
	settings SettingsSource,
	processed shared.ProcessedOrderStore,
	documents DocumentStore,
	transfer FileTransfer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.Window <= 0 {
		cfg.Window = shared.DefaultProcessedOrderConfig().Window
	}
	if cfg.EBridge == (export.EBridgeOptions{}) {
		cfg.EBridge = export.DefaultEBridgeOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		commerce:  commerce,
		settings:  settings,
		processed: processed,
		documents: documents,
		transfer:  transfer,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleOrderEvent processes one order-change notification. Only events that
// put the order into fulfillment-ready status trigger an export; everything
// else is ignored. Delivery is all-or-nothing: the processed record is
// committed only after every document reached both sinks, so a failed batch
// stays eligible for redelivery by the caller.
func (s *Service) HandleOrderEvent(ctx context.Context, event export.OrderEvent) (Result, error) {
	log := s.logger.With(zap.Int("order_id", event.OrderID), zap.String("scope", event.Scope))

	eventType := event.EventType()

	processCreated := false
	if eventType == "created" {
		order, err := s.commerce.Order(ctx, event.OrderID)
		if err != nil {
			return "", fmt.Errorf("%w: %w", shared.ErrUpstreamFailure, err)
		}
		if order.StatusID == export.StatusFulfillmentReady {
			processCreated = true
		} else {
			log.Debug("order status is not fulfillment-ready", zap.Int("status_id", order.StatusID))
		}
	}

	statusReady := eventType == "statusUpdated" &&
		event.NewStatusID != nil && *event.NewStatusID == export.StatusFulfillmentReady
	if event.OrderID == 0 || (!statusReady && !processCreated) {
		return ResultIgnored, nil
	}

	lastProcessed, found, err := s.processed.LastProcessedAt(ctx, event.OrderID)
	if err != nil {
		return "", fmt.Errorf("reading processed record: %w", err)
	}
	if found {
		delta := s.now().Sub(lastProcessed)
		if delta < 0 {
			delta = -delta
		}
		if delta < s.cfg.Window {
			log.Info("skipping recently processed order", zap.Time("last_processed_at", lastProcessed))
			return ResultSkipped, nil
		}
	}

	settings := s.resolveSettings(ctx)

	snap, err := s.fetchSnapshot(ctx, event.OrderID)
	if err != nil {
		return "", err
	}

	docs, err := export.BuildEBridgeDocuments(snap, settings, s.cfg.EBridge)
	if err != nil {
		return "", err
	}

	if err := s.deliver(ctx, event.OrderID, docs); err != nil {
		return "", err
	}
	log.Debug("documents delivered", zap.Int("count", len(docs)))

	if err := s.processed.MarkProcessed(ctx, event.OrderID, s.now()); err != nil {
		return "", fmt.Errorf("committing processed record: %w", err)
	}
	return ResultProcessed, nil
}

// GenerateCMSDocument builds the CMS export document for the given orders.
func (s *Service) GenerateCMSDocument(ctx context.Context, orderIDs []int) (string, error) {
	settings := s.resolveSettings(ctx)

	snapshots := make([]export.Snapshot, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		snap, err := s.fetchSnapshot(ctx, orderID)
		if err != nil {
			return "", err
		}
		snapshots = append(snapshots, snap)
	}
	return export.BuildCMSDocument(snapshots, settings)
}

// fetchSnapshot retrieves everything the builders need for one order.
func (s *Service) fetchSnapshot(ctx context.Context, orderID int) (export.Snapshot, error) {
	var snap export.Snapshot
	var err error

	if snap.Order, err = s.commerce.Order(ctx, orderID); err != nil {
		return snap, fmt.Errorf("%w: order %d: %w", shared.ErrUpstreamFailure, orderID, err)
	}
	if snap.Products, err = s.commerce.Products(ctx, orderID); err != nil {
		return snap, fmt.Errorf("%w: order %d products: %w", shared.ErrUpstreamFailure, orderID, err)
	}
	if snap.ShippingAddresses, err = s.commerce.ShippingAddresses(ctx, orderID); err != nil {
		return snap, fmt.Errorf("%w: order %d shipping addresses: %w", shared.ErrUpstreamFailure, orderID, err)
	}
	if snap.Coupons, err = s.commerce.Coupons(ctx, orderID); err != nil {
		return snap, fmt.Errorf("%w: order %d coupons: %w", shared.ErrUpstreamFailure, orderID, err)
	}
	if snap.Transactions, err = s.commerce.Transactions(ctx, orderID); err != nil {
		return snap, fmt.Errorf("%w: order %d transactions: %w", shared.ErrUpstreamFailure, orderID, err)
	}
	return snap, nil
}

// resolveSettings loads the export settings from the external source,
// falling back to the built-in defaults key by key.
func (s *Service) resolveSettings(ctx context.Context) export.Settings {
	settings := export.DefaultSettings()

	var letters []string
	if err := s.settings.Value(ctx, settingLetterOrder, &letters); err == nil && len(letters) > 0 {
		settings.LetterOrder = letters
	} else if err != nil && !errors.Is(err, ErrSettingNotFound) {
		s.logger.Warn("falling back to default letter order", zap.Error(err))
	}

	var combos map[string]string
	if err := s.settings.Value(ctx, settingComboSKUs, &combos); err == nil && len(combos) > 0 {
		settings.ComboSKUs = combos
	} else if err != nil && !errors.Is(err, ErrSettingNotFound) {
		s.logger.Warn("falling back to bundled combo table", zap.Error(err))
	}

	var bins []string
	if err := s.settings.Value(ctx, settingGhostBins, &bins); err == nil && len(bins) > 0 {
		ghost := make(map[string]struct{}, len(bins))
		for _, bin := range bins {
			ghost[bin] = struct{}{}
		}
		settings.GhostBins = ghost
	} else if err != nil && !errors.Is(err, ErrSettingNotFound) {
		s.logger.Warn("falling back to default ghost bins", zap.Error(err))
	}

	return settings
}

// deliver fans the documents out to both sinks concurrently and waits for
// all of them. The batch is fail-fast: a single failure fails the whole run
// and the caller's processed record stays uncommitted.
func (s *Service) deliver(ctx context.Context, orderID int, docs []string) error {
	nowMillis := s.now().UnixMilli()

	var wg sync.WaitGroup
	errCh := make(chan error, 2*len(docs))

	for i, doc := range docs {
		key := fmt.Sprintf("to-ebridge/order-%d-%d-%d.xml", orderID, nowMillis, i+1)
		filename := fmt.Sprintf("order-%d.xml", orderID)
		if len(docs) > 1 {
			filename = fmt.Sprintf("order-%d-%d.xml", orderID, i+1)
		}
		content := []byte(doc)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.documents.UploadDocument(ctx, key, content); err != nil {
				errCh <- fmt.Errorf("uploading %s: %w", key, err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := s.transfer.SendFile(ctx, filename, content); err != nil {
				errCh <- fmt.Errorf("sending %s: %w", filename, err)
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return fmt.Errorf("%w: %w", shared.ErrDeliveryFailure, err)
	}
	return nil
}
