package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trackdeal/settlements/internal/http/middleware"
	"github.com/trackdeal/settlements/internal/model"
	"github.com/trackdeal/settlements/internal/service"
)

// StatementGenerator renders a termination detail into a downloadable file.
type StatementGenerator interface {
	Statement(detail service.TerminationDetail) ([]byte, error)
}

type Handler struct {
	terminations *service.TerminationService
	settlements  *service.SettlementService
	excel        StatementGenerator
	pdf          StatementGenerator
	fileName     func(detail service.TerminationDetail, extension string) string
	log          zerolog.Logger
}

func NewHandler(
	terminations *service.TerminationService,
	settlements *service.SettlementService,
	excel StatementGenerator,
	pdf StatementGenerator,
	fileName func(detail service.TerminationDetail, extension string) string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		terminations: terminations,
		settlements:  settlements,
		excel:        excel,
		pdf:          pdf,
		fileName:     fileName,
		log:          log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	// The payment provider cannot send bearer tokens; the webhook relies on
	// the order-code lookup plus payment-status idempotency.
	router.POST("/payments/owner-compensation/webhook", h.ownerPaymentWebhook)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/contracts/:id/termination/preview", h.previewTermination)
	protected.POST("/contracts/:id/termination", h.executeTermination)
	protected.GET("/contracts/:id/termination", h.terminationDetail)
	protected.GET("/contracts/:id/termination/statement", h.terminationStatement)
	protected.POST("/settlements/run-due", h.runDueSettlements)
}

type teamMemberResponse struct {
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name,omitempty"`
	Gross       string `json:"gross"`
	Tax         string `json:"tax"`
	Net         string `json:"net"`
	Description string `json:"description,omitempty"`
}

type previewResponse struct {
	Terminator string `json:"terminator"`
	Warning    string `json:"warning,omitempty"`

	// Client projection.
	Refund              *string `json:"refund,omitempty"`
	FirstPayment        *string `json:"first_payment,omitempty"`
	OwnerCompensation   *string `json:"owner_compensation,omitempty"`
	TotalTeamGross      *string `json:"total_team_gross,omitempty"`
	ScheduledRefund     *string `json:"scheduled_refund,omitempty"`
	RefundScheduledDate *string `json:"refund_scheduled_date,omitempty"`

	// Owner projection.
	RequiredPayment *string              `json:"required_payment,omitempty"`
	CurrentBalance  *string              `json:"current_balance,omitempty"`
	Sufficient      *bool                `json:"sufficient,omitempty"`
	ClientRefund    *string              `json:"client_refund,omitempty"`
	Team            []teamMemberResponse `json:"team,omitempty"`

	AfterCutoff bool `json:"after_cutoff"`
}

func (h *Handler) previewTermination(c *gin.Context) {
	principal, contractID, ok := h.principalAndContract(c)
	if !ok {
		return
	}

	result, err := h.terminations.Preview(c.Request.Context(), service.PreviewInput{
		ContractID: contractID,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := previewResponse{
		Terminator:  string(result.Terminator),
		Warning:     result.Warning,
		AfterCutoff: result.Calculation.AfterCutoff,
	}
	if client := result.Client; client != nil {
		response.Refund = ptr(client.Refund.String())
		response.FirstPayment = ptr(client.FirstPayment.String())
		response.OwnerCompensation = ptr(client.OwnerCompensation.String())
		response.TotalTeamGross = ptr(client.TotalTeamGross.String())
		response.ScheduledRefund = ptr(client.ScheduledRefund.String())
		if client.RefundScheduledDate != nil {
			response.RefundScheduledDate = ptr(client.RefundScheduledDate.Format("2006-01-02"))
		}
	}
	if owner := result.Owner; owner != nil {
		response.RequiredPayment = ptr(owner.RequiredPayment.String())
		response.CurrentBalance = ptr(owner.CurrentBalance.String())
		response.Sufficient = &owner.Sufficient
		response.ClientRefund = ptr(owner.ClientRefund.String())
		for _, member := range owner.Team {
			response.Team = append(response.Team, teamMemberResponse{
				UserID:      member.UserID.String(),
				FullName:    member.FullName,
				Gross:       member.Gross.String(),
				Tax:         member.Tax.String(),
				Net:         member.Net.String(),
				Description: member.Description,
			})
		}
	}

	c.JSON(http.StatusOK, response)
}

type executeTerminationRequest struct {
	Notes string `json:"notes"`
}

type executeTerminationResponse struct {
	Terminator string `json:"terminator"`
	Status     string `json:"status,omitempty"`
	Warning    string `json:"warning,omitempty"`

	TerminationID string `json:"termination_id,omitempty"`
	TaxRecordID   string `json:"tax_record_id,omitempty"`

	// Owner path: the pending payment order that gates completion.
	OrderCode  string `json:"order_code,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

func (h *Handler) executeTermination(c *gin.Context) {
	principal, contractID, ok := h.principalAndContract(c)
	if !ok {
		return
	}

	// Notes are optional; an absent or invalid body means no notes.
	var req executeTerminationRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.terminations.Execute(c.Request.Context(), service.ExecuteInput{
		ContractID: contractID,
		Principal:  principal,
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := executeTerminationResponse{
		Terminator: string(result.Terminator),
		Warning:    result.Warning,
	}
	if result.Termination != nil {
		response.TerminationID = result.Termination.ID.String()
		response.Status = string(result.Termination.Status)
	}
	if result.TaxRecord != nil {
		response.TaxRecordID = result.TaxRecord.ID.String()
	}
	if result.Payment != nil {
		response.OrderCode = result.Payment.OrderCode
		response.PaymentURL = result.Payment.PaymentURL
		response.Amount = result.Payment.Amount.String()
	}

	c.JSON(http.StatusOK, response)
}

type detailResponse struct {
	ContractID          string  `json:"contract_id"`
	TerminatedBy        string  `json:"terminated_by"`
	Type                string  `json:"type"`
	Status              string  `json:"status"`
	TotalAmount         string  `json:"total_amount"`
	TotalTeamGross      string  `json:"total_team_gross"`
	TeamTax             string  `json:"team_tax"`
	OwnerCompensation   string  `json:"owner_compensation"`
	OwnerActualReceive  string  `json:"owner_actual_receive"`
	ClientRefund        string  `json:"client_refund"`
	Notes               string  `json:"notes,omitempty"`
	TerminatedAt        string  `json:"terminated_at"`
	OriginalTax         string  `json:"original_tax"`
	ActualTax           string  `json:"actual_tax"`
	RefundedTax         string  `json:"refunded_tax"`
	TaxRecordStatus     string  `json:"tax_record_status"`
	RefundScheduledDate *string `json:"refund_scheduled_date,omitempty"`
	RefundedAt          *string `json:"refunded_at,omitempty"`
	OrderCode           string  `json:"order_code,omitempty"`
	PaymentStatus       string  `json:"payment_status,omitempty"`
}

func (h *Handler) terminationDetail(c *gin.Context) {
	principal, contractID, ok := h.principalAndContract(c)
	if !ok {
		return
	}

	detail, err := h.terminations.GetDetail(c.Request.Context(), service.DetailInput{
		ContractID: contractID,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	t := detail.Termination
	record := detail.TaxRecord
	response := detailResponse{
		ContractID:         t.ContractID.String(),
		TerminatedBy:       string(t.TerminatedBy),
		Type:               string(t.Type),
		Status:             string(t.Status),
		TotalAmount:        t.TotalAmount.String(),
		TotalTeamGross:     t.TotalTeamGross.String(),
		TeamTax:            t.TeamTax.String(),
		OwnerCompensation:  t.OwnerCompensation.String(),
		OwnerActualReceive: t.OwnerActualReceive.String(),
		ClientRefund:       t.ClientRefund.String(),
		Notes:              t.Notes,
		TerminatedAt:       t.CreatedAt.Format(time.RFC3339),
		OriginalTax:        record.OriginalTax.String(),
		ActualTax:          record.ActualTax.String(),
		RefundedTax:        record.RefundedTax.String(),
		TaxRecordStatus:    string(record.Status),
	}
	if record.RefundScheduledDate != nil {
		response.RefundScheduledDate = ptr(record.RefundScheduledDate.Format("2006-01-02"))
	}
	if record.RefundedAt != nil {
		response.RefundedAt = ptr(record.RefundedAt.Format(time.RFC3339))
	}
	if detail.Payment != nil {
		response.OrderCode = detail.Payment.OrderCode
		response.PaymentStatus = string(detail.Payment.Status)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) terminationStatement(c *gin.Context) {
	principal, contractID, ok := h.principalAndContract(c)
	if !ok {
		return
	}

	detail, err := h.terminations.GetDetail(c.Request.Context(), service.DetailInput{
		ContractID: contractID,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "xlsx")))
	switch format {
	case "xlsx":
		content, err := h.excel.Statement(*detail)
		if err != nil {
			h.handleError(c, err)
			return
		}
		contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		c.Header("Content-Disposition", "attachment; filename=\""+h.fileName(*detail, "xlsx")+"\"")
		c.Data(http.StatusOK, contentType, content)
	case "pdf":
		content, err := h.pdf.Statement(*detail)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\""+h.fileName(*detail, "pdf")+"\"")
		c.Data(http.StatusOK, "application/pdf", content)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format"})
	}
}

type ownerPaymentWebhookRequest struct {
	OrderCode string `json:"order_code" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

func (h *Handler) ownerPaymentWebhook(c *gin.Context) {
	var req ownerPaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.terminations.ConfirmOwnerPayment(c.Request.Context(), service.ConfirmPaymentInput{
		OrderCode: req.OrderCode,
		Status:    req.Status,
	})
	if err != nil {
		// A non-success status is acknowledged so the provider stops
		// retrying a payment that genuinely failed.
		if errors.Is(err, service.ErrPaymentNotConfirmed) {
			c.JSON(http.StatusOK, gin.H{"result": "ignored"})
			return
		}
		h.handleError(c, err)
		return
	}

	if result.AlreadyProcessed {
		c.JSON(http.StatusOK, gin.H{"result": "already_processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":         "settled",
		"termination_id": result.Termination.ID.String(),
		"status":         string(result.Termination.Status),
	})
}

func (h *Handler) runDueSettlements(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	settled, err := h.settlements.ProcessDueRefunds(c.Request.Context(), time.Now())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

func (h *Handler) principalAndContract(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, uuid.Nil, false
	}

	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return model.Principal{}, uuid.Nil, false
	}
	return principal, contractID, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyTerminated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("termination request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func ptr(s string) *string {
	return &s
}
