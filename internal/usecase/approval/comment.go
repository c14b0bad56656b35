package approval

import (
	"context"
	"strings"

	domain "device-approval-backend/internal/domain/approval"
)

func (u *Usecase) ListComments(ctx context.Context, requestID string) ([]CommentDTO, error) {
	req, err := u.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	rows, err := u.comments.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out := make([]CommentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, commentDTO(&rows[i]))
	}
	return out, nil
}

// AddComment appends to the thread and notifies the other participants.
func (u *Usecase) AddComment(ctx context.Context, in CommentInput) (*CommentDTO, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.ErrContentRequired
	}
	author, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}
	req, err := u.requests.GetByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	c := newComment(req, author, content)
	if err := u.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	u.notifier.Notify(ctx, u.commentNotices(req, c)...)
	dto := commentDTO(c)
	return &dto, nil
}

func (u *Usecase) UpdateComment(ctx context.Context, in CommentInput) (*CommentDTO, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.ErrContentRequired
	}
	c, err := u.ownComment(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := u.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	dto := commentDTO(c)
	return &dto, nil
}

func (u *Usecase) DeleteComment(ctx context.Context, in CommentInput) error {
	c, err := u.ownComment(ctx, in)
	if err != nil {
		return err
	}
	return u.comments.Delete(ctx, c)
}

func (u *Usecase) ownComment(ctx context.Context, in CommentInput) (*domain.Comment, error) {
	actor, err := u.users.Resolve(ctx, in.Actor)
	if err != nil {
		return nil, err
	}
	req, err := u.requests.GetByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	c, err := u.comments.GetByCommentID(ctx, req.ID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if c.Author.ExternalID != actor.ExternalID {
		return nil, domain.ErrNotCommentAuthor
	}
	return c, nil
}
