package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/badge"
	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/interface/rest/middleware"
	"github.com/gatepass/gatepass/internal/interface/rest/presenter"
	"github.com/gatepass/gatepass/internal/service"
	"github.com/gatepass/gatepass/internal/usecase"
	"github.com/gatepass/gatepass/policy"
)

type Handler struct {
	accreditation *usecase.AccreditationUsecase
	export        *usecase.ExportUsecase
	verify        *usecase.VerifyUsecase
	events        usecase.EventRepository
	zones         usecase.ZoneRepository
	signal        *service.SignalService
}

func NewHandler(
	accreditation *usecase.AccreditationUsecase,
	export *usecase.ExportUsecase,
	verify *usecase.VerifyUsecase,
	events usecase.EventRepository,
	zones usecase.ZoneRepository,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		accreditation: accreditation,
		export:        export,
		verify:        verify,
		events:        events,
		zones:         zones,
		signal:        signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *middleware.AuthMiddleware) {
	e.POST("/api/v1/registrations", h.handleRegister)
	e.GET("/verify/:code", h.handleVerify)

	api := e.Group("/api/v1", auth.RequireOperator)
	api.GET("/accreditations", h.handleList)
	api.GET("/accreditations/:id", h.handleGet)
	api.PUT("/accreditations/:id", h.handleUpdate)
	api.DELETE("/accreditations/:id", h.handleDelete, auth.RequirePermission(policy.ActionDelete))
	api.POST("/accreditations/:id/approve", h.handleApprove, auth.RequirePermission(policy.ActionApprove))
	api.POST("/accreditations/:id/reject", h.handleReject, auth.RequirePermission(policy.ActionReject))
	api.GET("/accreditations/:id/card.pdf", h.handleCardPDF)
	api.GET("/accreditations/:id/card.png", h.handleCardPNG)
	api.POST("/exports/bulk", h.handleBulkExport, auth.RequirePermission(policy.ActionExport))
	api.GET("/exports/bulk/ws", h.handleBulkProgress)
	api.GET("/exports/list.xlsx", h.handleListXLSX, auth.RequirePermission(policy.ActionExport))
	api.GET("/exports/list.pdf", h.handleListPDF, auth.RequirePermission(policy.ActionExport))
	api.GET("/events", h.handleEventList)
	api.POST("/events", h.handleEventCreate, auth.RequirePermission(policy.ActionManageEvents))
	api.GET("/events/:id", h.handleEventGet)
	api.PUT("/events/:id", h.handleEventUpdate, auth.RequirePermission(policy.ActionManageEvents))
	api.DELETE("/events/:id", h.handleEventDelete, auth.RequirePermission(policy.ActionManageEvents))
	api.GET("/events/:id/zones", h.handleZoneList)
	api.POST("/events/:id/zones", h.handleZoneCreate, auth.RequirePermission(policy.ActionManageEvents))
	api.PUT("/zones/:id", h.handleZoneUpdate, auth.RequirePermission(policy.ActionManageEvents))
	api.DELETE("/zones/:id", h.handleZoneDelete, auth.RequirePermission(policy.ActionManageEvents))
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req gatepass.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	rec, err := h.accreditation.Register(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "event not found")
		}
		return presenter.BadRequest(c, err)
	}
	return presenter.Created(c, rec)
}

func (h *Handler) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.verify.Verify(ctx, c.Param("code"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "no accreditation matches this code")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, result)
}

func recordFilter(c echo.Context) domain.RecordFilter {
	filter := domain.RecordFilter{
		EventID: c.QueryParam("eventId"),
		Status:  domain.Status(c.QueryParam("status")),
		Role:    c.QueryParam("role"),
		Search:  c.QueryParam("search"),
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		filter.Offset = offset
	}
	return filter
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := h.accreditation.List(ctx, recordFilter(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, records)
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := h.accreditation.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, rec)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var rec domain.AccreditationRecord
	if err := c.Bind(&rec); err != nil {
		return presenter.BadRequest(c, err)
	}
	rec.ID = c.Param("id")

	updated, err := h.accreditation.Update(ctx, rec, middleware.RequesterID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.accreditation.Delete(ctx, c.Param("id"), middleware.RequesterID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleApprove(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ZoneCodes string `json:"zoneCodes"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	rec, err := h.accreditation.Approve(ctx, c.Param("id"), req.ZoneCodes, middleware.RequesterID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		if errors.Is(err, domain.TransitionError{}) {
			return presenter.Conflict(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, rec)
}

func (h *Handler) handleReject(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	rec, err := h.accreditation.Reject(ctx, c.Param("id"), req.Remarks, middleware.RequesterID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		if errors.Is(err, domain.TransitionError{}) {
			return presenter.Conflict(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, rec)
}

func (h *Handler) handleCardPDF(c echo.Context) error {
	ctx := c.Request().Context()

	size := gatepass.ParseSizeKey(c.QueryParam("size"))

	render := h.export.CardPDF
	if c.QueryParam("wrap") == "png" {
		render = h.export.CardPDFRaster
	}
	pdf, filename, err := render(ctx, c.Param("id"), size)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "accreditation not found")
		}
		if errors.Is(err, domain.ErrNotApproved) {
			return presenter.Conflict(c, err)
		}
		return presenter.InternalError(c, err)
	}

	disposition := "attachment"
	if c.QueryParam("disposition") == "inline" {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename="%s"`, disposition, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) handleCardPNG(c echo.Context) error {
	ctx := c.Request().Context()

	face := c.QueryParam("face")
	if face == "" {
		face = "front"
	}
	scale := badge.ClampScale(0)
	if raw := c.QueryParam("scale"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid scale parameter")
		}
		scale = badge.ClampScale(n)
	}

	png, filename, err := h.export.FacePNG(ctx, c.Param("id"), face, scale)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "card face not available")
		}
		if errors.Is(err, domain.ErrNotApproved) {
			return presenter.Conflict(c, err)
		}
		return presenter.InternalError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "image/png", png)
}

type bulkExportRequest struct {
	IDs     []string `json:"ids"`
	Size    string   `json:"size"`
	Channel string   `json:"channel"`
}

func (h *Handler) handleBulkExport(c echo.Context) error {
	ctx := c.Request().Context()

	var req bulkExportRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if len(req.IDs) == 0 {
		return presenter.BadRequestMessage(c, "ids is required")
	}

	channel := req.Channel
	if channel == "" {
		channel = uuid.NewString()
	}

	var progress func(gatepass.ExportProgress)
	if h.signal != nil {
		progress = func(p gatepass.ExportProgress) {
			if err := h.signal.Publish(ctx, "export:"+channel, p); err != nil {
				slog.WarnContext(ctx, "progress publish failed",
					slog.String("error", err.Error()),
					slog.String("module", "export"),
				)
			}
		}
	}

	result, err := h.export.Bulk(ctx, req.IDs, gatepass.ParseSizeKey(req.Size), progress)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	c.Response().Header().Set("X-Export-Channel", channel)
	c.Response().Header().Set("X-Skipped-Count", strconv.Itoa(len(result.Skipped)))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	return c.Blob(http.StatusOK, "application/zip", result.Zip)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleBulkProgress streams export progress for a channel over a
// websocket. Clients open this before POSTing the bulk export with the
// same channel id.
func (h *Handler) handleBulkProgress(c echo.Context) error {
	channel := c.QueryParam("channel")
	if channel == "" {
		return presenter.BadRequestMessage(c, "channel parameter is required")
	}
	if h.signal == nil {
		return presenter.BadRequestMessage(c, "progress streaming is not enabled")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()

	updates, err := h.signal.Subscribe(ctx, "export:"+channel)
	if err != nil {
		slog.ErrorContext(ctx, "progress subscribe failed",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return nil
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case p, ok := <-updates:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(p); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
			if p.Done == p.Total {
				return nil
			}
		}
	}
}

func (h *Handler) handleListXLSX(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := h.export.ListXLSX(ctx, recordFilter(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="accreditations.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

func (h *Handler) handleListPDF(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := h.export.ListPDF(ctx, recordFilter(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="accreditations.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", payload)
}

func (h *Handler) handleEventList(c echo.Context) error {
	ctx := c.Request().Context()

	events, err := h.events.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, events)
}

func (h *Handler) handleEventCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var ev domain.Event
	if err := c.Bind(&ev); err != nil {
		return presenter.BadRequest(c, err)
	}
	if ev.Name == "" {
		return presenter.BadRequestMessage(c, "name is required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	if err := h.events.Create(ctx, &ev); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, ev)
}

func (h *Handler) handleEventGet(c echo.Context) error {
	ctx := c.Request().Context()

	ev, err := h.events.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "event not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, ev)
}

func (h *Handler) handleEventUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var ev domain.Event
	if err := c.Bind(&ev); err != nil {
		return presenter.BadRequest(c, err)
	}
	ev.ID = c.Param("id")

	if err := h.events.Update(ctx, &ev); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "event not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, ev)
}

func (h *Handler) handleEventDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.events.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "event not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleZoneList(c echo.Context) error {
	ctx := c.Request().Context()

	zones, err := h.zones.ListByEvent(ctx, c.Param("id"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, zones)
}

func (h *Handler) handleZoneCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var z domain.Zone
	if err := c.Bind(&z); err != nil {
		return presenter.BadRequest(c, err)
	}
	if z.Code == "" {
		return presenter.BadRequestMessage(c, "code is required")
	}
	z.EventID = c.Param("id")
	if z.ID == "" {
		z.ID = uuid.NewString()
	}

	if err := h.zones.Create(ctx, &z); err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.Created(c, z)
}

func (h *Handler) handleZoneUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var z domain.Zone
	if err := c.Bind(&z); err != nil {
		return presenter.BadRequest(c, err)
	}
	z.ID = c.Param("id")

	if err := h.zones.Update(ctx, &z); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "zone not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, z)
}

func (h *Handler) handleZoneDelete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.zones.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "zone not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}
