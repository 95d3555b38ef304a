package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/buscapolo/fieldops/internal/excel"
	"github.com/buscapolo/fieldops/internal/http/middleware"
	"github.com/buscapolo/fieldops/internal/model"
	"github.com/buscapolo/fieldops/internal/pdf"
	"github.com/buscapolo/fieldops/internal/service"
	"github.com/buscapolo/fieldops/internal/store"
)

type Handler struct {
	clients *service.ClientService
	quotes  *service.QuoteService
	jobs    *service.JobService
	store   *store.Store
	pdf     *pdf.Generator
	excel   *excel.Generator
	log     zerolog.Logger

	vapidPublicKey string
}

func NewHandler(
	clients *service.ClientService,
	quotes *service.QuoteService,
	jobs *service.JobService,
	st *store.Store,
	pdfGen *pdf.Generator,
	excelGen *excel.Generator,
	log zerolog.Logger,
	vapidPublicKey string,
) *Handler {
	return &Handler{
		clients:        clients,
		quotes:         quotes,
		jobs:           jobs,
		store:          st,
		pdf:            pdfGen,
		excel:          excelGen,
		log:            log,
		vapidPublicKey: vapidPublicKey,
	}
}

// --- clients ---

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) createClient(c *gin.Context) {
	var input service.NewClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) getClient(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) updateClient(c *gin.Context) {
	var input service.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) deleteClient(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clientJobs(c *gin.Context) {
	result, err := h.clients.Jobs(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- quotes ---

func (h *Handler) listQuotes(c *gin.Context) {
	quotes, err := h.quotes.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) listActiveQuotes(c *gin.Context) {
	quotes, err := h.quotes.ListActive(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) createQuote(c *gin.Context) {
	var input service.NewQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (h *Handler) getQuote(c *gin.Context) {
	quote, err := h.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

type quoteStatusRequest struct {
	Status model.QuoteStatus `json:"estado" binding:"required"`
}

func (h *Handler) setQuoteStatus(c *gin.Context) {
	var req quoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := h.quotes.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"fecha" binding:"required"`
}

func (h *Handler) convertQuote(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.quotes.Convert(c.Request.Context(), c.Param("id"), req.ScheduledAt)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) deleteQuote(c *gin.Context) {
	if err := h.quotes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) quotePDF(c *gin.Context) {
	quote, err := h.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.pdf.QuoteDocument(*quote)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, "presupuesto-"+quote.ID+".pdf", "application/pdf", content)
}

// --- jobs ---

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) createJob(c *gin.Context) {
	var input service.NewJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type paymentStatusRequest struct {
	Status model.PaymentStatus `json:"estado" binding:"required"`
}

func (h *Handler) setPaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := h.jobs.SetPaymentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

func (h *Handler) rescheduleJob(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.jobs.Reschedule(c.Request.Context(), c.Param("id"), req.ScheduledAt)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	if err := h.jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) weekJobs(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = parsed
	}
	days, err := h.jobs.Week(c.Request.Context(), date)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func (h *Handler) jobReceipt(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.pdf.JobReceipt(*job)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, "comprobante-"+job.ID+".pdf", "application/pdf", content)
}

// --- summaries ---

func (h *Handler) monthlySummary(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}
	summary, err := h.jobs.MonthlySummary(c.Request.Context(), year, month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) exportMonthlySummary(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}
	summary, err := h.jobs.MonthlySummary(c.Request.Context(), year, month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.excel.MonthlySummary(*summary)
	if err != nil {
		h.handleError(c, err)
		return
	}
	name := "resumen-" + strconv.Itoa(year) + "-" + strconv.Itoa(int(month)) + ".xlsx"
	sendFile(c, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// --- backup ---

func (h *Handler) exportBackup(c *gin.Context) {
	data, err := h.store.Export(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, "fieldops_backup.json", "application/json", data)
}

func (h *Handler) importBackup(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty import payload"})
		return
	}
	if principal, ok := middleware.MustPrincipal(c); ok {
		h.log.Info().Str("user_id", principal.UserID).Msg("restoring backup snapshot")
	}
	if err := h.store.Import(c.Request.Context(), data); err != nil {
		// A bad file is the caller's problem, not a storage failure.
		if errors.Is(err, store.ErrCorruptData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "restored"})
}

// --- push subscriptions ---

type subscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256DH string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (h *Handler) putSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sub := model.PushSubscription{Endpoint: req.Endpoint, P256DH: req.Keys.P256DH, Auth: req.Keys.Auth}
	err := h.store.UpdateSubscriptions(c.Request.Context(), func(subs []model.PushSubscription) ([]model.PushSubscription, error) {
		for i := range subs {
			if subs[i].Endpoint == sub.Endpoint {
				subs[i] = sub
				return subs, nil
			}
		}
		return append(subs, sub), nil
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	err := h.store.UpdateSubscriptions(c.Request.Context(), func(subs []model.PushSubscription) ([]model.PushSubscription, error) {
		kept := subs[:0]
		for _, s := range subs {
			if s.Endpoint != endpoint {
				kept = append(kept, s)
			}
		}
		return kept, nil
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) vapidKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.vapidPublicKey})
}

// --- shared ---

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "missing required fields",
			"missingFields": validation.MissingFields,
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "slot taken",
			"clientName":  conflict.Job.ClientName,
			"scheduledAt": conflict.Job.ScheduledAt,
		})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrCorruptData):
		h.log.Error().Err(err).Msg("stored data is corrupt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored data is corrupt"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func sendFile(c *gin.Context, name, contentType string, content []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, content)
}

func parseDate(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return 0, 0, false
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return 0, 0, false
		}
		month = time.Month(parsed)
	}
	return year, month, true
}
