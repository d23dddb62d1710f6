package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

// Submitter routes an intent to the ledger and falls back to the queue when
// the store is unreachable. Record ids are assigned before the first attempt
// so the queued payload replays with the exact same identity.
type Submitter struct {
	ledger *ledger.Service
	queue  *Queue
	logger *zap.Logger
}

// NewSubmitter wires a submitter instance.
func NewSubmitter(ledgerSvc *ledger.Service, queue *Queue, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{ledger: ledgerSvc, queue: queue, logger: logger}
}

// Queue exposes the backing queue for status and maintenance callers.
func (s *Submitter) Queue() *Queue {
	return s.queue
}

// deletePayload is the queued form of the delete operations.
type deletePayload struct {
	ID string `json:"id"`
}

// SubmitDailyLog records a daily log, queueing it when offline. The returned
// record is nil when the operation was queued.
func (s *Submitter) SubmitDailyLog(ctx context.Context, session models.Session, in ledger.DailyLogInput) (*models.DailyLogRecord, bool, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	record, err := s.ledger.RecordDailyLog(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpRecordDailyLog, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return record, false, err
}

// SubmitDailyLogUpdate edits a daily log, queueing the edit when offline.
func (s *Submitter) SubmitDailyLogUpdate(ctx context.Context, session models.Session, in ledger.DailyLogUpdate) (*models.DailyLogRecord, bool, error) {
	record, err := s.ledger.UpdateDailyLog(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpUpdateDailyLog, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return record, false, err
}

// SubmitDailyLogDelete deletes a daily log, queueing the delete when offline.
func (s *Submitter) SubmitDailyLogDelete(ctx context.Context, session models.Session, id string) (bool, error) {
	err := s.ledger.DeleteDailyLog(ctx, session, id)
	if queued, qErr := s.maybeQueue(err, OpDeleteDailyLog, session, deletePayload{ID: id}); queued || qErr != nil {
		return queued, qErr
	}
	return false, err
}

// SubmitSale records a sale, queueing it when offline.
func (s *Submitter) SubmitSale(ctx context.Context, session models.Session, in ledger.SaleInput) (*models.SaleRecord, bool, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	sale, err := s.ledger.RecordSale(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpRecordSale, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return sale, false, err
}

// SubmitSaleUpdate edits a sale, queueing the edit when offline.
func (s *Submitter) SubmitSaleUpdate(ctx context.Context, session models.Session, in ledger.SaleUpdate) (*models.SaleRecord, bool, error) {
	sale, err := s.ledger.UpdateSale(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpUpdateSale, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return sale, false, err
}

// SubmitSaleDelete deletes a sale, queueing the delete when offline.
func (s *Submitter) SubmitSaleDelete(ctx context.Context, session models.Session, id string) (bool, error) {
	err := s.ledger.DeleteSale(ctx, session, id)
	if queued, qErr := s.maybeQueue(err, OpDeleteSale, session, deletePayload{ID: id}); queued || qErr != nil {
		return queued, qErr
	}
	return false, err
}

// SubmitConsumption records a consumption, queueing it when offline.
func (s *Submitter) SubmitConsumption(ctx context.Context, session models.Session, in ledger.ConsumptionInput) (*models.ConsumptionRecord, bool, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.ExpenseID == "" {
		in.ExpenseID = uuid.NewString()
	}
	record, err := s.ledger.RecordConsumption(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpRecordConsume, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return record, false, err
}

// SubmitExpense records an expense, queueing it when offline.
func (s *Submitter) SubmitExpense(ctx context.Context, session models.Session, in ledger.ExpenseInput) (*models.ExpenseRecord, bool, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	expense, err := s.ledger.RecordExpense(ctx, session, in)
	if queued, qErr := s.maybeQueue(err, OpRecordExpense, session, in); queued || qErr != nil {
		return nil, queued, qErr
	}
	return expense, false, err
}

// maybeQueue enqueues the operation when err is the network classification.
// Any other error, including nil, passes through to the caller.
func (s *Submitter) maybeQueue(err error, opType OpType, session models.Session, payload any) (bool, error) {
	if err == nil || !errors.Is(err, repository.ErrNetworkUnavailable) {
		return false, nil
	}

	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return false, fmt.Errorf("marshal %s payload: %w", opType, marshalErr)
	}
	if _, qErr := s.queue.Enqueue(opType, string(raw), session.UserID, session.Name, string(session.Role)); qErr != nil {
		return false, fmt.Errorf("store unreachable and enqueue failed: %w", qErr)
	}
	return true, nil
}

// ReplayAll walks pending entries in insertion order and replays each one
// independently: a failing entry stays queued and the walk continues, so one
// bad record never blocks the rest. Safe to call repeatedly; committed
// operations are detected by their record id and not applied twice.
func (s *Submitter) ReplayAll(ctx context.Context) (synced, failed int, err error) {
	entries, err := s.queue.Pending()
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if err := s.replay(ctx, entry); err != nil {
			failed++
			if markErr := s.queue.MarkFailed(entry.ID, err); markErr != nil {
				s.logger.Error("failed to record replay failure", zap.String("entry_id", entry.ID), zap.Error(markErr))
			}
			s.logger.Warn("replay failed",
				zap.String("entry_id", entry.ID),
				zap.String("type", string(entry.Type)),
				zap.Error(err))
			continue
		}
		synced++
		if markErr := s.queue.MarkSynced(entry.ID); markErr != nil {
			s.logger.Error("failed to mark entry synced", zap.String("entry_id", entry.ID), zap.Error(markErr))
		}
	}

	if synced > 0 || failed > 0 {
		s.logger.Info("outbox replay finished", zap.Int("synced", synced), zap.Int("failed", failed))
	}
	return synced, failed, nil
}

func (s *Submitter) replay(ctx context.Context, entry PendingOperation) error {
	session := models.Session{
		UserID: entry.UserID,
		Name:   entry.UserName,
		Role:   models.UserRole(entry.UserRole),
	}

	var err error
	switch entry.Type {
	case OpRecordDailyLog:
		var in ledger.DailyLogInput
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.RecordDailyLog(ctx, session, in)
		}
	case OpUpdateDailyLog:
		var in ledger.DailyLogUpdate
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.UpdateDailyLog(ctx, session, in)
		}
	case OpDeleteDailyLog:
		var in deletePayload
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			err = s.ledger.DeleteDailyLog(ctx, session, in.ID)
		}
	case OpRecordSale:
		var in ledger.SaleInput
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.RecordSale(ctx, session, in)
		}
	case OpUpdateSale:
		var in ledger.SaleUpdate
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.UpdateSale(ctx, session, in)
		}
	case OpDeleteSale:
		var in deletePayload
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			err = s.ledger.DeleteSale(ctx, session, in.ID)
		}
	case OpRecordConsume:
		var in ledger.ConsumptionInput
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.RecordConsumption(ctx, session, in)
		}
	case OpRecordExpense:
		var in ledger.ExpenseInput
		if err = json.Unmarshal([]byte(entry.Payload), &in); err == nil {
			_, err = s.ledger.RecordExpense(ctx, session, in)
		}
	default:
		return fmt.Errorf("unknown operation type %q", entry.Type)
	}

	// A delete whose record is already gone was applied by an earlier
	// partial replay; count it as done.
	if err != nil && isDelete(entry.Type) && errors.Is(err, ledger.ErrRecordNotFound) {
		s.logger.Info("delete already applied", zap.String("entry_id", entry.ID))
		return nil
	}
	return err
}

func isDelete(t OpType) bool {
	return t == OpDeleteDailyLog || t == OpDeleteSale
}
