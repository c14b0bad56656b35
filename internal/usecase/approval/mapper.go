package approval

import "device-approval-backend/internal/domain/approval"

func personDTO(i approval.Identity) PersonDTO {
	return PersonDTO{ExternalID: i.ExternalID, Username: i.Username, Name: i.Name, Email: i.Email}
}

func stepDTO(s *approval.Step) StepDTO {
	return StepDTO{
		Sequence:  s.Sequence,
		Approver:  personDTO(s.Approver),
		Status:    string(s.Status),
		DecidedAt: s.DecidedAt,
		Comment:   s.Comment,
	}
}

func toDTO(r *approval.Request) *ApprovalDTO {
	dto := &ApprovalDTO{
		RequestID:     r.RequestID,
		Category:      string(r.Category),
		Status:        string(r.Status),
		DisplayStatus: r.DisplayStatus(),
		Title:         r.Title,
		Reason:        r.Reason,
		Requester:     personDTO(r.Requester),
		SubmittedAt:   r.SubmittedAt,
		DueAt:         r.DueAt,
		CompletedAt:   r.CompletedAt,
		Steps:         make([]StepDTO, 0, len(r.Steps)),
	}
	for i := range r.Steps {
		dto.Steps = append(dto.Steps, stepDTO(&r.Steps[i]))
	}
	if s := r.ActiveStep(); s != nil {
		seq := s.Sequence
		dto.CurrentStep = &seq
	}
	if d, ok := r.Detail().(*approval.DeviceDetail); ok {
		dto.Device = deviceDTO(d)
	}
	return dto
}

func deviceDTO(d *approval.DeviceDetail) *DeviceDetailDTO {
	return &DeviceDetailDTO{
		DeviceID:       d.DeviceID,
		DeviceName:     d.DeviceName,
		DeviceStatus:   d.DeviceStatus,
		Action:         string(d.Action),
		Status:         d.Status,
		Purpose:        d.Purpose,
		ProjectID:      d.ProjectID,
		ProjectCode:    d.ProjectCode,
		ProjectName:    d.ProjectName,
		DepartmentID:   d.DepartmentID,
		DepartmentCode: d.DepartmentCode,
		DepartmentName: d.DepartmentName,
		RealUser:       d.RealUser,
		UsageStart:     d.UsageStart,
		UsageEnd:       d.UsageEnd,
		Memo:           d.Memo,
		AttachmentRef:  d.AttachmentRef,
	}
}

func commentDTO(c *approval.Comment) CommentDTO {
	return CommentDTO{
		CommentID: c.CommentID,
		Author:    personDTO(c.Author),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
