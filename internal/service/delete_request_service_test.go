package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"paperarchive/internal/domain"
)

// fixture backs every collaborator of DeleteRequestService with in-memory
// state so the workflow can be exercised without Postgres or a file store.
type fixture struct {
	requests map[uuid.UUID]*domain.DeleteRequest
	files    map[uuid.UUID]*domain.ExamFile
	stored   map[string]bool

	audit    []domain.AuditRecord
	auditErr error
	notices  []notice
}

type notice struct {
	userID   int64
	title    string
	message  string
	severity domain.Severity
	deepLink string
}

func newFixture() *fixture {
	return &fixture{
		requests: make(map[uuid.UUID]*domain.DeleteRequest),
		files:    make(map[uuid.UUID]*domain.ExamFile),
		stored:   make(map[string]bool),
	}
}

func (f *fixture) addFile(uploadedBy int64) *domain.ExamFile {
	file := &domain.ExamFile{
		UUID:        uuid.New(),
		ExamID:      1,
		Category:    domain.SampleBest,
		Name:        "midterm_best.pdf",
		StoragePath: "exams/1/" + uuid.NewString() + ".pdf",
		UploadedBy:  uploadedBy,
		CourseID:    7,
		CourseCode:  "CS101",
	}
	f.files[file.UUID] = file
	f.stored[file.StoragePath] = true
	return file
}

func (f *fixture) Insert(_ context.Context, req *domain.DeleteRequest) error {
	for _, existing := range f.requests {
		if existing.FileUUID == req.FileUUID && existing.Status == domain.StatusPending {
			return domain.ConflictError("pending request exists for file %s", req.FileUUID)
		}
	}
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fixture) FindByID(_ context.Context, id uuid.UUID) (*domain.DeleteRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (f *fixture) FindPendingByFile(_ context.Context, fileUUID uuid.UUID) (*domain.DeleteRequest, error) {
	for _, req := range f.requests {
		if req.FileUUID == fileUUID && req.Status == domain.StatusPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fixture) ListPending(_ context.Context) ([]domain.DeleteRequest, error) {
	var out []domain.DeleteRequest
	for _, req := range f.requests {
		if req.Status == domain.StatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fixture) Reject(_ context.Context, id uuid.UUID, reason string) (int64, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != domain.StatusPending {
		return 0, nil
	}
	req.Status = domain.StatusRejected
	req.RejectionReason = &reason
	return 1, nil
}

func (f *fixture) ApproveDelete(_ context.Context, id uuid.UUID) (int64, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != domain.StatusPending {
		return 0, nil
	}
	delete(f.files, req.FileUUID)
	delete(f.requests, id)
	return 1, nil
}

func (f *fixture) FindByUUID(_ context.Context, id uuid.UUID) (*domain.ExamFile, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, nil
	}
	cp := *file
	return &cp, nil
}

func (f *fixture) Remove(_ context.Context, path string) error {
	delete(f.stored, path)
	return nil
}

func (f *fixture) Exists(_ context.Context, path string) bool {
	return f.stored[path]
}

func (f *fixture) Record(_ context.Context, rec *domain.AuditRecord) error {
	if f.auditErr != nil {
		return f.auditErr
	}
	f.audit = append(f.audit, *rec)
	return nil
}

func (f *fixture) Enqueue(_ context.Context, userID int64, title, message string, severity domain.Severity, deepLink string) {
	f.notices = append(f.notices, notice{userID, title, message, severity, deepLink})
}

var (
	owner = domain.Actor{ID: 10, Role: domain.RoleInstructor}
	other = domain.Actor{ID: 11, Role: domain.RoleInstructor}
	admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}
)

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		reason  string
		missing bool
		wantErr error
	}{
		{name: "owner with reason", actor: owner, reason: "duplicate upload"},
		{name: "admin for foreign file", actor: admin, reason: "policy violation"},
		{name: "empty reason", actor: owner, reason: "   ", wantErr: domain.ErrValidation},
		{name: "unknown file", actor: owner, reason: "x", missing: true, wantErr: domain.ErrNotFound},
		{name: "not the uploader", actor: other, reason: "x", wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := NewDeleteRequestService(f, f, f, f, f)

			file := f.addFile(owner.ID)
			fileUUID := file.UUID
			if tt.missing {
				fileUUID = uuid.New()
			}

			req, err := svc.Submit(context.Background(), fileUUID, tt.actor, tt.reason)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Submit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() unexpected error: %v", err)
			}
			if req.Status != domain.StatusPending {
				t.Errorf("Submit() status = %s, want PENDING", req.Status)
			}
			if req.RequesterID != tt.actor.ID {
				t.Errorf("Submit() requester = %d, want %d", req.RequesterID, tt.actor.ID)
			}
		})
	}
}

func TestSubmitDuplicatePending(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)

	if _, err := svc.Submit(context.Background(), file.UUID, owner, "first"); err != nil {
		t.Fatalf("first Submit() failed: %v", err)
	}
	_, err := svc.Submit(context.Background(), file.UUID, owner, "second")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Submit() error = %v, want %v", err, domain.ErrConflict)
	}
}

func TestListPendingRequiresAdmin(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)

	if _, err := svc.ListPending(context.Background(), owner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("ListPending() as instructor error = %v, want %v", err, domain.ErrForbidden)
	}

	file := f.addFile(owner.ID)
	if _, err := svc.Submit(context.Background(), file.UUID, owner, "x"); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	pending, err := svc.ListPending(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListPending() as admin failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("ListPending() returned %d requests, want 1", len(pending))
	}
}

func TestDecideApprove(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)

	req, err := svc.Submit(context.Background(), file.UUID, owner, "Okunaksız Tarama")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if err := svc.Decide(context.Background(), req.ID, admin, domain.ActionApprove, ""); err != nil {
		t.Fatalf("Decide(approve) failed: %v", err)
	}

	if got, _ := f.FindByID(context.Background(), req.ID); got != nil {
		t.Errorf("request row still present after approval")
	}
	if _, ok := f.files[file.UUID]; ok {
		t.Errorf("file metadata still present after approval")
	}
	if f.stored[file.StoragePath] {
		t.Errorf("physical file still present after approval")
	}

	if len(f.audit) != 1 {
		t.Fatalf("audit records = %d, want 1", len(f.audit))
	}
	rec := f.audit[0]
	if rec.Action != domain.AuditFileDeleteApproved {
		t.Errorf("audit action = %s, want %s", rec.Action, domain.AuditFileDeleteApproved)
	}
	if rec.Detail != "Okunaksız Tarama" {
		t.Errorf("audit detail = %q, want the original reason", rec.Detail)
	}
	if rec.ActorID != admin.ID {
		t.Errorf("audit actor = %d, want %d", rec.ActorID, admin.ID)
	}

	if len(f.notices) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notices))
	}
	n := f.notices[0]
	if n.userID != owner.ID || n.severity != domain.SeveritySuccess {
		t.Errorf("notification = %+v, want SUCCESS for user %d", n, owner.ID)
	}
	if n.deepLink != "/courses/7" {
		t.Errorf("deep link = %q, want /courses/7", n.deepLink)
	}
}

func TestDecideApproveMissingPhysicalFile(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)
	delete(f.stored, file.StoragePath)

	req, err := svc.Submit(context.Background(), file.UUID, owner, "orphaned record")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if err := svc.Decide(context.Background(), req.ID, admin, domain.ActionApprove, ""); err != nil {
		t.Fatalf("Decide(approve) with missing physical file failed: %v", err)
	}
	if _, ok := f.files[file.UUID]; ok {
		t.Errorf("file metadata still present after approval")
	}
}

func TestDecideApproveSurvivesAuditFailure(t *testing.T) {
	f := newFixture()
	f.auditErr = errors.New("audit store down")
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)

	req, err := svc.Submit(context.Background(), file.UUID, owner, "x")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if err := svc.Decide(context.Background(), req.ID, admin, domain.ActionApprove, ""); err != nil {
		t.Fatalf("Decide(approve) failed on audit error: %v", err)
	}
	if len(f.notices) != 1 {
		t.Errorf("notifications = %d, want 1 despite audit failure", len(f.notices))
	}
}

func TestDecideReject(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)

	req, err := svc.Submit(context.Background(), file.UUID, owner, "wrong course")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if err := svc.Decide(context.Background(), req.ID, admin, domain.ActionReject, "Yanlış Dosya Yüklendi"); err != nil {
		t.Fatalf("Decide(reject) failed: %v", err)
	}

	got, _ := f.FindByID(context.Background(), req.ID)
	if got == nil {
		t.Fatal("request row gone after rejection")
	}
	if got.Status != domain.StatusRejected {
		t.Errorf("status = %s, want REJECTED", got.Status)
	}
	if got.RejectionReason == nil || *got.RejectionReason != "Yanlış Dosya Yüklendi" {
		t.Errorf("rejection reason not persisted: %v", got.RejectionReason)
	}

	if _, ok := f.files[file.UUID]; !ok {
		t.Errorf("file metadata removed by rejection")
	}
	if !f.stored[file.StoragePath] {
		t.Errorf("physical file removed by rejection")
	}
	if len(f.audit) != 0 {
		t.Errorf("audit records = %d, want 0 for a rejection", len(f.audit))
	}

	if len(f.notices) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notices))
	}
	n := f.notices[0]
	if n.severity != domain.SeverityWarning {
		t.Errorf("severity = %s, want WARNING", n.severity)
	}
	if !strings.Contains(n.message, "Yanlış Dosya Yüklendi") {
		t.Errorf("notification message %q does not include the rejection reason", n.message)
	}
}

func TestDecideRejectEmptyReason(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)

	req, err := svc.Submit(context.Background(), file.UUID, owner, "x")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	err = svc.Decide(context.Background(), req.ID, admin, domain.ActionReject, "  ")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Decide(reject, empty reason) error = %v, want %v", err, domain.ErrValidation)
	}

	got, _ := f.FindByID(context.Background(), req.ID)
	if got == nil || got.Status != domain.StatusPending {
		t.Errorf("request no longer PENDING after failed rejection")
	}
}

func TestDecideValidation(t *testing.T) {
	f := newFixture()
	svc := NewDeleteRequestService(f, f, f, f, f)
	file := f.addFile(owner.ID)
	req, err := svc.Submit(context.Background(), file.UUID, owner, "x")
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	tests := []struct {
		name    string
		id      uuid.UUID
		actor   domain.Actor
		action  domain.DecisionAction
		reason  string
		wantErr error
	}{
		{name: "non-admin", id: req.ID, actor: owner, action: domain.ActionApprove, wantErr: domain.ErrForbidden},
		{name: "unknown action", id: req.ID, actor: admin, action: "escalate", wantErr: domain.ErrValidation},
		{name: "unknown request", id: uuid.New(), actor: admin, action: domain.ActionApprove, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Decide(context.Background(), tt.id, tt.actor, tt.action, tt.reason)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decide() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecideTwice(t *testing.T) {
	for _, first := range []domain.DecisionAction{domain.ActionApprove, domain.ActionReject} {
		t.Run(string(first), func(t *testing.T) {
			f := newFixture()
			svc := NewDeleteRequestService(f, f, f, f, f)
			file := f.addFile(owner.ID)
			req, err := svc.Submit(context.Background(), file.UUID, owner, "x")
			if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}

			if err := svc.Decide(context.Background(), req.ID, admin, first, "Dosya sahibi değilsiniz"); err != nil {
				t.Fatalf("first Decide(%s) failed: %v", first, err)
			}
			err = svc.Decide(context.Background(), req.ID, admin, domain.ActionApprove, "")
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("second Decide() error = %v, want %v", err, domain.ErrNotFound)
			}
		})
	}
}
