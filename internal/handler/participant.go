package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Iliyas128/flight-connect-backend/internal/codegen"
	"github.com/Iliyas128/flight-connect-backend/internal/lifecycle"
	"github.com/Iliyas128/flight-connect-backend/internal/metrics"
	"github.com/Iliyas128/flight-connect-backend/internal/repository"
)

// ParticipantHandler bundles the dependencies for participant endpoints.
type ParticipantHandler struct {
	Sessions     *repository.SessionRepo
	Participants *repository.ParticipantRepo
}

// NewParticipantHandler constructs a ParticipantHandler and panics if a
// repository is missing.
func NewParticipantHandler(sessions *repository.SessionRepo, participants *repository.ParticipantRepo) *ParticipantHandler {
	if sessions == nil || participants == nil {
		panic("nil repository passed to NewParticipantHandler")
	}
	return &ParticipantHandler{Sessions: sessions, Participants: participants}
}

type registerReq struct {
	Name           string `json:"name" validate:"required"`
	ValidationCode string `json:"validation_code" validate:"required"`
}

// Register handles POST /v1/sessions/:id/participants. Registration is
// only accepted while the session's registration window is open: from
// the configured opening time up to (exclusive) the closing boundary
// before the start. The pilot supplies a three-letter validation code;
// the system issues a personal code in return.
func (h *ParticipantHandler) Register(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	code := normalizeCode(req.ValidationCode)
	if !shortCode.MatchString(code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_code must be three letters"})
	}

	ctx := c.Request().Context()
	s, err := h.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}

	now := time.Now().UTC()
	if err := lifecycle.RefreshOne(ctx, h.Sessions, s, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to refresh session"})
	}
	open, err := lifecycle.Times(s).RegistrationOpen(now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid stored schedule"})
	}
	if !open {
		return c.JSON(http.StatusConflict, echo.Map{"error": "registration is not open for this session"})
	}

	p := &repository.Participant{
		SessionID:      s.ID,
		Name:           req.Name,
		ValidationCode: code,
		PersonalCode:   codegen.Code(codegen.DefaultLength),
	}
	if err := h.Participants.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not register participant"})
	}
	metrics.ParticipantsRegistered.Inc()
	return c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/sessions/:id/participants.
func (h *ParticipantHandler) List(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, sessionID); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}
	participants, err := h.Participants.ListBySession(ctx, sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load participants"})
	}
	if participants == nil {
		participants = []repository.Participant{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": participants})
}

type validationReq struct {
	Validated *bool `json:"validated"`
}

// SetValidation handles PATCH /v1/participants/:id/validation. The flag
// is tri-state and only ever set explicitly by a scheduler: true
// confirms attendance, false rejects it, null resets to undecided.
func (h *ParticipantHandler) SetValidation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req validationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if err := h.Participants.SetValidated(ctx, id, req.Validated); err != nil {
		if err == repository.ErrParticipantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "participant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	p, err := h.Participants.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load participant"})
	}
	return c.JSON(http.StatusOK, p)
}
