package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Iliyas128/flight-connect-backend/internal/codegen"
	"github.com/Iliyas128/flight-connect-backend/internal/config"
	"github.com/Iliyas128/flight-connect-backend/internal/lifecycle"
	"github.com/Iliyas128/flight-connect-backend/internal/metrics"
	"github.com/Iliyas128/flight-connect-backend/internal/queue"
	"github.com/Iliyas128/flight-connect-backend/internal/repository"
	"github.com/Iliyas128/flight-connect-backend/internal/schedule"
	queue_publisher "github.com/Iliyas128/flight-connect-backend/internal/service"
)

// SessionHandler bundles the dependencies for session endpoints.
type SessionHandler struct {
	Cfg      config.Config
	Sessions *repository.SessionRepo
}

// NewSessionHandler constructs a SessionHandler and panics if the
// repository is missing.
func NewSessionHandler(cfg config.Config, sessions *repository.SessionRepo) *SessionHandler {
	if sessions == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Cfg: cfg, Sessions: sessions}
}

func validStatus(s string) bool {
	switch schedule.Status(s) {
	case schedule.StatusOpen, schedule.StatusClosing, schedule.StatusClosed, schedule.StatusCompleted:
		return true
	}
	return false
}

// entriesFor converts session rows to overlap-check entries.
func entriesFor(sessions []repository.Session) []schedule.Entry {
	entries := make([]schedule.Entry, 0, len(sessions))
	for i := range sessions {
		entries = append(entries, schedule.Entry{ID: sessions[i].ID, Times: lifecycle.Times(&sessions[i])})
	}
	return entries
}

// conflictResponse names the conflicting session so the caller can see
// whose schedule is in the way.
func conflictResponse(c echo.Context, hit *schedule.Entry, sameDay []repository.Session) error {
	metrics.SessionConflicts.Inc()
	end := hit.Times.End
	if end == "" {
		if e, err := hit.Times.EndAt(); err == nil {
			end = e.UTC().Format("15:04")
		}
	}
	conflict := echo.Map{
		"session_id":  hit.ID,
		"flight_date": hit.Times.Date,
		"starts_at":   hit.Times.Start,
		"ends_at":     end,
	}
	for i := range sameDay {
		if sameDay[i].ID == hit.ID {
			conflict["code"] = sameDay[i].Code
			if sameDay[i].CreatorID != nil {
				conflict["creator_id"] = *sameDay[i].CreatorID
			}
			break
		}
	}
	return c.JSON(http.StatusConflict, echo.Map{
		"error":    "session time overlaps with an existing session",
		"conflict": conflict,
	})
}

// List handles GET /v1/sessions. Statuses are recomputed before the
// response goes out; rows whose derived status changed are persisted
// first, so the stored state converges without a background sweeper.
// The optional ?status= filter is applied to the refreshed values.
func (h *SessionHandler) List(c echo.Context) error {
	filter := c.QueryParam("status")
	if filter != "" && !validStatus(filter) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}
	ctx := c.Request().Context()
	sessions, err := h.Sessions.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	if err := lifecycle.Refresh(ctx, h.Sessions, sessions, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to refresh sessions"})
	}
	if filter != "" {
		filtered := make([]repository.Session, 0, len(sessions))
		for _, s := range sessions {
			if s.Status == filter {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}
	if sessions == nil {
		sessions = []repository.Session{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sessions})
}

// Upcoming handles GET /v1/sessions/upcoming: every session that has
// not completed yet, with statuses refreshed. Sessions that turn out to
// have completed since the last write are dropped from the response
// after the refresh.
func (h *SessionHandler) Upcoming(c echo.Context) error {
	ctx := c.Request().Context()
	sessions, err := h.Sessions.ListUpcoming(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	if err := lifecycle.Refresh(ctx, h.Sessions, sessions, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to refresh sessions"})
	}
	upcoming := make([]repository.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Status != string(schedule.StatusCompleted) {
			upcoming = append(upcoming, s)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": upcoming})
}

// Get handles GET /v1/sessions/:id with the same refresh-on-read rule.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}
	if err := lifecycle.RefreshOne(ctx, h.Sessions, s, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to refresh session"})
	}
	return c.JSON(http.StatusOK, s)
}

type createSessionReq struct {
	FlightDate        string `json:"flight_date" validate:"required"`
	RegistrationStart string `json:"registration_start" validate:"required"`
	StartsAt          string `json:"starts_at" validate:"required"`
	EndsAt            string `json:"ends_at"`
	ClosingMinutes    int    `json:"closing_minutes" validate:"gte=0"`
	Comment           string `json:"comment"`
}

func (req *createSessionReq) times() schedule.Times {
	return schedule.Times{
		Date:              req.FlightDate,
		RegistrationStart: req.RegistrationStart,
		Start:             req.StartsAt,
		End:               req.EndsAt,
		ClosingMinutes:    req.ClosingMinutes,
	}
}

// checkScheduleFormats validates the literal field formats and responds
// with the offending field on failure. Returns false when a response
// was already written.
func checkScheduleFormats(c echo.Context, t schedule.Times) bool {
	if !schedule.ValidDate(t.Date) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_date must be YYYY-MM-DD"})
		return false
	}
	if !schedule.ValidClock(t.RegistrationStart) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "registration_start must be HH:mm"})
		return false
	}
	if !schedule.ValidClock(t.Start) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be HH:mm"})
		return false
	}
	if t.End != "" && !schedule.ValidClock(t.End) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be HH:mm"})
		return false
	}
	return true
}

// Create handles POST /v1/sessions. It validates the schedule, rejects
// overlaps with same-day sessions, assigns a unique three-letter code
// scoped to the recency window and the next sequence number, computes
// the initial status and persists the session.
func (h *SessionHandler) Create(c echo.Context) error {
	creatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	times := req.times()
	if !checkScheduleFormats(c, times) {
		return nil
	}

	now := time.Now().UTC()
	status, err := schedule.ComputeStatus(times, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule"})
	}

	ctx := c.Request().Context()
	sameDay, err := h.Sessions.ListByDate(ctx, times.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing sessions"})
	}
	hit, err := schedule.FindConflict(times, 0, entriesFor(sameDay))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing sessions"})
	}
	if hit != nil {
		return conflictResponse(c, hit, sameDay)
	}

	since := now.AddDate(0, 0, -h.Cfg.CodeRecencyDays)
	code, err := codegen.UniqueCode(codegen.DefaultLength, codegen.DefaultMaxAttempts, func(candidate string) (bool, error) {
		used, err := h.Sessions.CodeInUse(ctx, candidate, since)
		return !used, err
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to allocate session code"})
	}
	maxNum, err := h.Sessions.MaxNumber(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to allocate session number"})
	}

	s := &repository.Session{
		Code:              code,
		Number:            maxNum + 1,
		FlightDate:        times.Date,
		RegistrationStart: times.RegistrationStart,
		StartsAt:          times.Start,
		EndsAt:            times.End,
		ClosingMinutes:    times.ClosingMinutes,
		Status:            string(status),
		Comment:           req.Comment,
		CreatorID:         &creatorID,
	}
	if err := h.Sessions.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
	}

	metrics.SessionsCreated.Inc()
	_ = queue_publisher.PublishSessionCreated(ctx, queue.SessionCreatedEvent{
		EventID:    uuid.NewString(),
		SessionID:  s.ID,
		Code:       s.Code,
		Number:     s.Number,
		FlightDate: s.FlightDate,
		StartsAt:   s.StartsAt,
		EndsAt:     s.EndsAt,
		Status:     s.Status,
		CreatorID:  s.CreatorID,
		CreatedAt:  s.CreatedAt,
	})
	return c.JSON(http.StatusCreated, s)
}

type updateSessionReq struct {
	FlightDate        *string `json:"flight_date"`
	RegistrationStart *string `json:"registration_start"`
	StartsAt          *string `json:"starts_at"`
	EndsAt            *string `json:"ends_at"`
	ClosingMinutes    *int    `json:"closing_minutes"`
	Comment           *string `json:"comment"`
}

// Update handles PATCH /v1/sessions/:id. Schedule changes re-run the
// overlap check with the session itself excluded, and the status is
// recomputed from the new schedule before persisting.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	cur, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}

	timesChanged := false
	if req.FlightDate != nil {
		cur.FlightDate = *req.FlightDate
		timesChanged = true
	}
	if req.RegistrationStart != nil {
		cur.RegistrationStart = *req.RegistrationStart
		timesChanged = true
	}
	if req.StartsAt != nil {
		cur.StartsAt = *req.StartsAt
		timesChanged = true
	}
	if req.EndsAt != nil {
		// An explicit empty string clears the end time back to the
		// two-hour default.
		cur.EndsAt = strings.TrimSpace(*req.EndsAt)
		timesChanged = true
	}
	if req.ClosingMinutes != nil {
		if *req.ClosingMinutes < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "closing_minutes must not be negative"})
		}
		cur.ClosingMinutes = *req.ClosingMinutes
		timesChanged = true
	}
	if req.Comment != nil {
		cur.Comment = *req.Comment
	}

	times := lifecycle.Times(cur)
	if !checkScheduleFormats(c, times) {
		return nil
	}
	now := time.Now().UTC()
	status, err := schedule.ComputeStatus(times, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule"})
	}
	cur.Status = string(status)

	if timesChanged {
		sameDay, err := h.Sessions.ListByDate(ctx, times.Date)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing sessions"})
		}
		hit, err := schedule.FindConflict(times, cur.ID, entriesFor(sameDay))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing sessions"})
		}
		if hit != nil {
			return conflictResponse(c, hit, sameDay)
		}
	}

	if err := h.Sessions.Update(ctx, cur); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cur)
}

// Delete handles DELETE /v1/sessions/:id. Only completed sessions may
// be removed; their participants go with them, issued validation keys
// stay so the key values remain reserved for the rest of the two-month
// window.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	switch err := h.Sessions.DeleteCompleted(c.Request().Context(), id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrSessionNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case repository.ErrSessionNotCompleted:
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed sessions can be deleted"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
}
