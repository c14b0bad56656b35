package approval

import (
	domain "device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/directory"
	"device-approval-backend/internal/domain/notification"
)

const (
	tplRequested    = "approval_requested"
	tplApproved     = "approval_approved"
	tplRejected     = "approval_rejected"
	tplCancelled    = "approval_cancelled"
	tplCommentAdded = "comment_added"
)

func (u *Usecase) link(req *domain.Request) string {
	if u.linkBase == "" {
		return "/approvals/" + req.RequestID
	}
	return u.linkBase + "/approvals/" + req.RequestID
}

func (u *Usecase) notice(req *domain.Request, to domain.Identity, kind notification.Kind, subject, tpl string, extra map[string]string) notification.Notice {
	vars := map[string]string{
		"RequestID": req.RequestID,
		"Title":     req.Title,
		"Requester": req.Requester.Name,
		"Recipient": to.Name,
		"Status":    req.DisplayStatus(),
	}
	for k, v := range extra {
		vars[k] = v
	}
	return notification.Notice{
		RecipientExternalID: to.ExternalID,
		RecipientEmail:      to.Email,
		RecipientName:       to.Name,
		Subject:             subject,
		Kind:                kind,
		DeepLink:            u.link(req),
		Template:            tpl,
		Vars:                vars,
	}
}

func (u *Usecase) requestedNotice(req *domain.Request, step *domain.Step) []notification.Notice {
	if step == nil {
		return nil
	}
	return []notification.Notice{u.notice(req, step.Approver, notification.KindApprovalRequested,
		"Approval requested: "+req.Title, tplRequested, nil)}
}

func (u *Usecase) approvedNotice(req *domain.Request) []notification.Notice {
	return []notification.Notice{u.notice(req, req.Requester, notification.KindApprovalApproved,
		"Approved: "+req.Title, tplApproved, nil)}
}

// rejectedNotices goes to the requester and back to the deciding approver.
func (u *Usecase) rejectedNotices(req *domain.Request, approver *directory.User, reason string) []notification.Notice {
	extra := map[string]string{"Approver": approver.DisplayName, "Reason": reason}
	out := []notification.Notice{
		u.notice(req, req.Requester, notification.KindApprovalRejected, "Rejected: "+req.Title, tplRejected, extra),
	}
	if approver.ExternalID != req.Requester.ExternalID {
		out = append(out, u.notice(req, domain.IdentityOf(approver), notification.KindApprovalRejected,
			"Rejected: "+req.Title, tplRejected, extra))
	}
	return out
}

func (u *Usecase) cancelledNotice(req *domain.Request, waiting *domain.Step) []notification.Notice {
	if waiting == nil {
		return nil
	}
	return []notification.Notice{u.notice(req, waiting.Approver, notification.KindApprovalCancelled,
		"Cancelled: "+req.Title, tplCancelled, nil)}
}

// commentNotices fans out to the requester and every approver except the
// author, once per person.
func (u *Usecase) commentNotices(req *domain.Request, c *domain.Comment) []notification.Notice {
	extra := map[string]string{"Author": c.Author.Name, "Comment": c.Content}
	seen := map[string]bool{c.Author.ExternalID: true}
	var out []notification.Notice
	add := func(to domain.Identity) {
		if to.ExternalID == "" || seen[to.ExternalID] {
			return
		}
		seen[to.ExternalID] = true
		out = append(out, u.notice(req, to, notification.KindCommentAdded, "New comment: "+req.Title, tplCommentAdded, extra))
	}
	add(req.Requester)
	for _, s := range req.Steps {
		add(s.Approver)
	}
	return out
}
