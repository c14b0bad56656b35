package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	approvalDomain "device-approval-backend/internal/domain/approval"
)

func TestComment_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	req := makeRequest("req-comments", time.Now())
	if err := NewApprovalRepository(db).Create(ctx, req); err != nil {
		t.Fatalf("Create request: %v", err)
	}
	repo := NewCommentRepository(db)

	first := &approvalDomain.Comment{CommentID: "c1", ApprovalRequestID: req.ID, Author: alice, Content: "first"}
	second := &approvalDomain.Comment{CommentID: "c2", ApprovalRequestID: req.ID, Author: bob, Content: "second"}
	for _, c := range []*approvalDomain.Comment{first, second} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := repo.ListByRequest(ctx, req.ID)
	if err != nil || len(list) != 2 || list[0].CommentID != "c1" || list[1].Author != bob {
		t.Fatalf("ListByRequest = %+v, %v", list, err)
	}

	got, err := repo.GetByCommentID(ctx, req.ID, "c1")
	if err != nil {
		t.Fatalf("GetByCommentID: %v", err)
	}
	got.Content = "edited"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByCommentID(ctx, req.ID, "c1")
	if got.Content != "edited" {
		t.Fatalf("content = %q", got.Content)
	}

	// scoped to the request
	if _, err := repo.GetByCommentID(ctx, req.ID+1, "c1"); !errors.Is(err, approvalDomain.ErrCommentNotFound) {
		t.Fatalf("want ErrCommentNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, got); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, got); !errors.Is(err, approvalDomain.ErrCommentNotFound) {
		t.Fatalf("second Delete: want ErrCommentNotFound, got %v", err)
	}
	list, _ = repo.ListByRequest(ctx, req.ID)
	if len(list) != 1 || list[0].CommentID != "c2" {
		t.Fatalf("after delete = %+v", list)
	}
}
