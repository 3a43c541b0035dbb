package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"paperarchive/internal/domain"
)

// Collaborator contracts for the delete-request workflow. The workflow owns
// no storage itself; everything side-effecting goes through these.

type DeleteRequestStore interface {
	Insert(ctx context.Context, req *domain.DeleteRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DeleteRequest, error)
	FindPendingByFile(ctx context.Context, fileUUID uuid.UUID) (*domain.DeleteRequest, error)
	ListPending(ctx context.Context) ([]domain.DeleteRequest, error)
	// Reject and ApproveDelete return the number of affected rows; zero means
	// the request was not PENDING anymore.
	Reject(ctx context.Context, id uuid.UUID, reason string) (int64, error)
	ApproveDelete(ctx context.Context, id uuid.UUID) (int64, error)
}

type ExamFileFinder interface {
	FindByUUID(ctx context.Context, id uuid.UUID) (*domain.ExamFile, error)
}

type FileRemover interface {
	Remove(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) bool
}

type AuditWriter interface {
	Record(ctx context.Context, rec *domain.AuditRecord) error
}

// NotificationSink is fire-and-forget: implementations log their own
// failures and never report them back.
type NotificationSink interface {
	Enqueue(ctx context.Context, userID int64, title, message string, severity domain.Severity, deepLink string)
}

// DeleteRequestService governs the lifecycle of file delete requests:
// an owner submits one, an administrator approves (file and metadata gone,
// audit entry written) or rejects (reason recorded, file untouched).
type DeleteRequestService struct {
	requests DeleteRequestStore
	files    ExamFileFinder
	store    FileRemover
	audit    AuditWriter
	notify   NotificationSink
}

func NewDeleteRequestService(
	requests DeleteRequestStore,
	files ExamFileFinder,
	store FileRemover,
	audit AuditWriter,
	notify NotificationSink,
) *DeleteRequestService {
	return &DeleteRequestService{
		requests: requests,
		files:    files,
		store:    store,
		audit:    audit,
		notify:   notify,
	}
}

// Submit files a PENDING delete request for a sample file. Only the uploader
// or an administrator may request deletion, and a file can carry at most one
// PENDING request.
func (s *DeleteRequestService) Submit(ctx context.Context, fileUUID uuid.UUID, actor domain.Actor, reason string) (*domain.DeleteRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ValidationError("reason is required")
	}

	file, err := s.files.FindByUUID(ctx, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, domain.NotFoundError("file %s", fileUUID)
	}
	if file.UploadedBy != actor.ID && !actor.IsAdmin() {
		return nil, domain.ForbiddenError("only the uploader may request deletion of %s", file.Name)
	}

	pending, err := s.requests.FindPendingByFile(ctx, fileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending != nil {
		return nil, domain.ConflictError("a pending delete request already exists for file %s", fileUUID)
	}

	req := &domain.DeleteRequest{
		ID:          uuid.New(),
		FileUUID:    fileUUID,
		RequesterID: actor.ID,
		Reason:      reason,
		Status:      domain.StatusPending,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		// The partial unique index closes the race the check above leaves open.
		return nil, err
	}
	return req, nil
}

// ListPending returns the administrator review queue.
func (s *DeleteRequestService) ListPending(ctx context.Context, actor domain.Actor) ([]domain.DeleteRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ForbiddenError("administrator capability required")
	}
	return s.requests.ListPending(ctx)
}

// Decide executes one of the two terminal actions on a PENDING request.
//
// Approve deletes the request row and the file metadata in one transaction,
// then best-effort removes the physical file, writes an audit record and
// notifies the requester. A request that is absent or already decided yields
// ErrNotFound regardless of which of the two it was.
func (s *DeleteRequestService) Decide(ctx context.Context, requestID uuid.UUID, actor domain.Actor, action domain.DecisionAction, rejectionReason string) error {
	if !actor.IsAdmin() {
		return domain.ForbiddenError("administrator capability required")
	}

	switch action {
	case domain.ActionApprove:
	case domain.ActionReject:
		if strings.TrimSpace(rejectionReason) == "" {
			return domain.ValidationError("rejection reason is required")
		}
	default:
		return domain.ValidationError("unknown action %q", action)
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load delete request: %w", err)
	}
	if req == nil || req.Status != domain.StatusPending {
		return domain.NotFoundError("no pending delete request %s", requestID)
	}

	if action == domain.ActionReject {
		return s.reject(ctx, req, rejectionReason)
	}
	return s.approve(ctx, req, actor)
}

func (s *DeleteRequestService) approve(ctx context.Context, req *domain.DeleteRequest, actor domain.Actor) error {
	file, err := s.files.FindByUUID(ctx, req.FileUUID)
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	n, err := s.requests.ApproveDelete(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("failed to approve delete request: %w", err)
	}
	if n == 0 {
		// Another administrator decided first.
		return domain.NotFoundError("no pending delete request %s", req.ID)
	}

	// Best-effort physical removal: a missing file counts as success, and a
	// storage failure must not undo the approval. The orphan sweep picks up
	// anything left behind.
	if file != nil && s.store.Exists(ctx, file.StoragePath) {
		if err := s.store.Remove(ctx, file.StoragePath); err != nil {
			log.Printf("warning: failed to remove %s from storage: %v", file.StoragePath, err)
		}
	}

	rec := &domain.AuditRecord{
		ActorID: actor.ID,
		Action:  domain.AuditFileDeleteApproved,
		Detail:  req.Reason,
	}
	var deepLink string
	if file != nil {
		rec.FileName = file.Name
		rec.CourseCode = file.CourseCode
		deepLink = fmt.Sprintf("/courses/%d", file.CourseID)
	}
	if err := s.audit.Record(ctx, rec); err != nil {
		log.Printf("warning: failed to write audit record for request %s: %v", req.ID, err)
	}

	s.notify.Enqueue(ctx, req.RequesterID,
		"Delete request approved",
		fmt.Sprintf("Your request to delete %q was approved and the file has been removed.", rec.FileName),
		domain.SeveritySuccess, deepLink)
	return nil
}

func (s *DeleteRequestService) reject(ctx context.Context, req *domain.DeleteRequest, reason string) error {
	n, err := s.requests.Reject(ctx, req.ID, reason)
	if err != nil {
		return fmt.Errorf("failed to reject delete request: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError("no pending delete request %s", req.ID)
	}

	var deepLink string
	file, err := s.files.FindByUUID(ctx, req.FileUUID)
	if err == nil && file != nil {
		deepLink = fmt.Sprintf("/courses/%d", file.CourseID)
	}

	s.notify.Enqueue(ctx, req.RequesterID,
		"Delete request rejected",
		fmt.Sprintf("Your request to delete %q was rejected: %s", req.FileName, reason),
		domain.SeverityWarning, deepLink)
	return nil
}
