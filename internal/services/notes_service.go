package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jotledger/internal/amqp"
	"jotledger/internal/core"
	applog "jotledger/internal/log"
	"jotledger/internal/undo"
)

// NotesStore is the durable store surface the notes service needs. Every
// mutating operation is atomic: it either fully applies or leaves no trace.
type NotesStore interface {
	AppendNote(ctx context.Context, owner int64, content string) (core.Note, error)
	UpdateNote(ctx context.Context, owner, id int64, content string) (core.Note, error)
	DeleteNote(ctx context.Context, owner, id int64) (core.Note, error)
	RestoreNoteAt(ctx context.Context, owner int64, content string, position int64) (core.Note, error)
	ReorderNotes(ctx context.Context, owner int64, ids []int64) error
	ListNotes(ctx context.Context, owner int64) ([]core.Note, error)
}

// NotesService orchestrates the user's ordered notes list: validation, the
// store operation, undo capture on delete, and event publishing.
type NotesService struct {
	store  NotesStore
	undo   *undo.Buffer[string]
	events *amqp.Client
}

func NewNotesService(store NotesStore, events *amqp.Client) *NotesService {
	return &NotesService{
		store:  store,
		undo:   undo.NewBuffer[string](undo.Window),
		events: events,
	}
}

// Add appends a note at the end of the owner's list.
func (s *NotesService) Add(ctx context.Context, owner int64, content string) (core.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return core.Note{}, core.NewValidationError("note content is required")
	}

	note, err := s.store.AppendNote(ctx, owner, content)
	if err != nil {
		return core.Note{}, fmt.Errorf("append note: %w", err)
	}

	s.publishEvent(ctx, applog.OpCreate, owner, note.ID)
	return note, nil
}

// Update replaces a note's content.
func (s *NotesService) Update(ctx context.Context, owner, id int64, content string) (core.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return core.Note{}, core.NewValidationError("note content is required")
	}

	note, err := s.store.UpdateNote(ctx, owner, id, content)
	if err != nil {
		return core.Note{}, err
	}

	s.publishEvent(ctx, applog.OpUpdate, owner, note.ID)
	return note, nil
}

// Reorder renumbers the owner's notes to match ids exactly. The id set must
// equal the owner's current set or the whole operation is rejected.
func (s *NotesService) Reorder(ctx context.Context, owner int64, ids []int64) error {
	if err := s.store.ReorderNotes(ctx, owner, ids); err != nil {
		return err
	}

	s.publishEvent(ctx, applog.OpReorder, owner, 0)
	return nil
}

// Delete removes a note and captures an undo snapshot of its content and
// position. The snapshot overwrites any previous one for this owner.
func (s *NotesService) Delete(ctx context.Context, owner, id int64) error {
	deleted, err := s.store.DeleteNote(ctx, owner, id)
	if err != nil {
		return err
	}

	s.undo.Capture(owner, deleted.Content, deleted.Position, time.Now())
	s.publishEvent(ctx, applog.OpDelete, owner, id)
	return nil
}

// Undo restores the owner's last deleted note at its original position,
// shifting later notes forward. It fails with core.ErrNothingToUndo or
// core.ErrUndoExpired when no usable snapshot exists.
func (s *NotesService) Undo(ctx context.Context, owner int64) (core.Note, error) {
	snap, err := s.undo.TryConsume(owner, time.Now())
	if err != nil {
		return core.Note{}, err
	}

	note, err := s.store.RestoreNoteAt(ctx, owner, snap.Payload, snap.Position)
	if err != nil {
		// The store rolled back; put the snapshot back (keeping its
		// original deletion time) so a retry within the window works.
		s.undo.Capture(owner, snap.Payload, snap.Position, snap.DeletedAt)
		return core.Note{}, fmt.Errorf("restore note: %w", err)
	}

	s.publishEvent(ctx, applog.OpUndo, owner, note.ID)
	return note, nil
}

// List returns the owner's notes ordered by (position, id).
func (s *NotesService) List(ctx context.Context, owner int64) ([]core.Note, error) {
	return s.store.ListNotes(ctx, owner)
}

// publishEvent is fire-and-forget: the mutation already committed, so a
// publish failure is logged and never fails the request.
func (s *NotesService) publishEvent(ctx context.Context, op string, owner, itemID int64) {
	if s.events == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(op, owner, string(core.KindNote), itemID)
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish note event",
			"error", err, "operation", op, "user_id", owner, "item_id", itemID)
	}
}
