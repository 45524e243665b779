package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Iliyas128/flight-connect-backend/internal/codegen"
	"github.com/Iliyas128/flight-connect-backend/internal/metrics"
	"github.com/Iliyas128/flight-connect-backend/internal/queue"
	"github.com/Iliyas128/flight-connect-backend/internal/repository"
	"github.com/Iliyas128/flight-connect-backend/internal/schedule"
	queue_publisher "github.com/Iliyas128/flight-connect-backend/internal/service"
)

// KeyHandler bundles the dependencies for validation key endpoints.
type KeyHandler struct {
	Sessions *repository.SessionRepo
	Keys     *repository.ValidKeyRepo
}

// NewKeyHandler constructs a KeyHandler and panics if a repository is
// missing.
func NewKeyHandler(sessions *repository.SessionRepo, keys *repository.ValidKeyRepo) *KeyHandler {
	if sessions == nil || keys == nil {
		panic("nil repository passed to NewKeyHandler")
	}
	return &KeyHandler{Sessions: sessions, Keys: keys}
}

type issueKeyReq struct {
	Key       string `json:"key"`
	PilotName string `json:"pilot_name" validate:"required"`
}

// Issue handles POST /v1/sessions/:id/keys. The caller may request a
// specific three-letter key or leave it empty to have one generated.
// A key value must be unique within the current and previous month
// tags, and a pilot holds at most one key per session inside that
// window. The probe is only a pre-filter; the unique index on
// (key_value, month_tag) has the final word and its violation comes
// back as the same conflict.
func (h *KeyHandler) Issue(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req issueKeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	pilot := strings.TrimSpace(req.PilotName)

	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, sessionID); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}

	now := time.Now().UTC()
	curTag, prevTag := schedule.MonthWindow(now)

	has, err := h.Keys.PilotHasKey(ctx, sessionID, pilot, curTag, prevTag)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check pilot keys"})
	}
	if has {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pilot already has a key for this session"})
	}

	value := normalizeCode(req.Key)
	if value != "" {
		if !shortCode.MatchString(value) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "key must be three letters"})
		}
		used, err := h.Keys.ValueInUse(ctx, value, curTag, prevTag)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check key"})
		}
		if used {
			return c.JSON(http.StatusConflict, echo.Map{"error": "validation key already in use"})
		}
	} else {
		value, err = h.generateValue(c, curTag, prevTag)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate key"})
		}
	}

	k := &repository.ValidKey{
		SessionID: sessionID,
		Value:     value,
		PilotName: pilot,
		MonthTag:  curTag,
	}
	if err := h.Keys.Create(ctx, k); err != nil {
		if err == repository.ErrDuplicateKey {
			return c.JSON(http.StatusConflict, echo.Map{"error": "validation key already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue key"})
	}

	metrics.KeysIssued.Inc()
	_ = queue_publisher.PublishKeyIssued(ctx, queue.KeyIssuedEvent{
		EventID:   uuid.NewString(),
		SessionID: k.SessionID,
		Key:       k.Value,
		PilotName: k.PilotName,
		MonthTag:  k.MonthTag,
		IssuedAt:  k.CreatedAt,
	})
	return c.JSON(http.StatusCreated, k)
}

// ListBySession handles GET /v1/sessions/:id/keys.
func (h *KeyHandler) ListBySession(c echo.Context) error {
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
	keys, err := h.Keys.ListBySession(ctx, sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load keys"})
	}
	if keys == nil {
		keys = []repository.ValidKey{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": keys})
}

// Generate handles POST /v1/keys: it returns a fresh key value that is
// unique within the current two-month window without persisting it.
func (h *KeyHandler) Generate(c echo.Context) error {
	curTag, prevTag := schedule.MonthWindow(time.Now().UTC())
	value, err := h.generateValue(c, curTag, prevTag)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate key"})
	}
	return c.JSON(http.StatusOK, echo.Map{"key": value})
}

func (h *KeyHandler) generateValue(c echo.Context, tags ...string) (string, error) {
	ctx := c.Request().Context()
	return codegen.UniqueCode(codegen.DefaultLength, codegen.DefaultMaxAttempts, func(candidate string) (bool, error) {
		used, err := h.Keys.ValueInUse(ctx, candidate, tags...)
		return !used, err
	})
}
