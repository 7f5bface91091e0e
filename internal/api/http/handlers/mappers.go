package handlers

import (
	"github.com/campus360/incident-service/internal/api/dto"
	"github.com/campus360/incident-service/internal/domain"
	"github.com/campus360/incident-service/internal/service"
)

func catalogRef(entry *domain.CatalogEntry) *dto.CatalogRef {
	if entry == nil {
		return nil
	}
	return &dto.CatalogRef{Code: entry.Code, Name: entry.Name, Color: entry.Color}
}

func ticketResponse(view *service.TicketView) dto.TicketResponse {
	t := view.Ticket
	return dto.TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		State:         catalogRef(view.State),
		Priority:      catalogRef(view.Priority),
		Category:      catalogRef(view.Category),
		Location:      catalogRef(view.Location),
		ReporterID:    t.ReporterID,
		ResponsibleID: t.ResponsibleID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ResolvedAt:    t.ResolvedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(detail.Attachments))
	for _, att := range detail.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:         att.ID,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
			UploaderID: att.UploaderID,
			CreatedAt:  att.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(&detail.TicketView),
		History:        auditResponses(detail.History),
		Comments:       commentResponses(detail.Comments),
		Attachments:    attachments,
	}
}

func commentResponse(comment domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		Internal:  comment.Internal,
		CreatedAt: comment.CreatedAt,
	}
}

func commentResponses(comments []domain.Comment) []dto.CommentResponse {
	resp := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		resp = append(resp, commentResponse(comment))
	}
	return resp
}

func auditResponses(entries []domain.AuditEntry) []dto.AuditEntryResponse {
	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			ActorID:     entry.ActorID,
			Description: entry.Description,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return resp
}

func catalogEntryResponse(entry domain.CatalogEntry) dto.CatalogEntryResponse {
	return dto.CatalogEntryResponse{
		Code:        entry.Code,
		Name:        entry.Name,
		Description: entry.Description,
		Order:       entry.Order,
		Level:       entry.Level,
		Color:       entry.Color,
		Building:    entry.Building,
		Floor:       entry.Floor,
		Active:      entry.Active,
	}
}
