package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-api/internal/repository"
)

// DeletionService performs the deferred deletions consumed from the queue.
// Each deletion and its aggregate cascade commit in a single transaction;
// a target that is already gone is treated as done, since tasks cannot be
// cancelled and may race each other.
type DeletionService struct {
	store       repository.Store
	aggregates  *AggregateService
	collectorID int64
	logger      *zap.Logger
}

// NewDeletionService constructs the service. collectorID is the sentinel
// account resolved at startup that inherits tickets and messages from
// deleted users.
func NewDeletionService(store repository.Store, aggregates *AggregateService, collectorID int64, logger *zap.Logger) *DeletionService {
	return &DeletionService{
		store:       store,
		aggregates:  aggregates,
		collectorID: collectorID,
		logger:      logger,
	}
}

// DeleteMessage removes one thread entry and resyncs ticket and owner.
func (s *DeletionService) DeleteMessage(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		msg, err := tx.Messages().GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("deferred message deletion: already gone", zap.Int64("message_id", id))
			return nil
		}
		if err != nil {
			return err
		}

		ownerID := s.collectorID
		ticket, err := tx.Tickets().GetByID(ctx, msg.TicketID)
		if err == nil {
			ownerID = ticket.OpenedByID
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if err := tx.Messages().Delete(ctx, msg.ID); err != nil {
			return err
		}
		return s.aggregates.OnMessageDeleted(ctx, tx, msg.TicketID, ownerID)
	})
}

// DeleteTicket removes a ticket; its messages cascade with the row. The
// owner is resynced after the row is gone so the counters reflect the
// post-delete state.
func (s *DeletionService) DeleteTicket(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("deferred ticket deletion: already gone", zap.Int64("ticket_id", id))
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Tickets().Delete(ctx, ticket.ID); err != nil {
			return err
		}
		return s.aggregates.OnTicketDeleted(ctx, tx, ticket.OpenedByID)
	})
}

// DeleteUser reassigns the user's tickets and messages to the collector
// account, removes the account, and resyncs the collector's rollups. The
// foreign keys are never nulled.
func (s *DeletionService) DeleteUser(ctx context.Context, id int64) error {
	if id == s.collectorID {
		return fmt.Errorf("refusing to delete the collector account (id=%d)", id)
	}
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, id); errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("deferred user deletion: already gone", zap.Int64("user_id", id))
			return nil
		} else if err != nil {
			return err
		}

		reassignedTickets, err := tx.Tickets().ReassignOwner(ctx, id, s.collectorID)
		if err != nil {
			return err
		}
		reassignedMessages, err := tx.Messages().ReassignAuthor(ctx, id, s.collectorID)
		if err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, id); err != nil {
			return err
		}

		s.logger.Info("user deleted",
			zap.Int64("user_id", id),
			zap.Int64("reassigned_tickets", reassignedTickets),
			zap.Int64("reassigned_messages", reassignedMessages))

		return s.aggregates.OnTicketWritten(ctx, tx, s.collectorID)
	})
}
