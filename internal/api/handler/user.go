package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/mcoot/agame/internal/api/middleware"
	"github.com/mcoot/agame/internal/api/request"
	"github.com/mcoot/agame/internal/api/response"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/services/identity"
	"github.com/mcoot/agame/internal/services/points"
	"github.com/mcoot/agame/internal/session"
)

// maxBodyBytes bounds request bodies on the points endpoint
const maxBodyBytes = 1 << 16

// UserHandler handles the current-user endpoints
type UserHandler struct {
	identity *identity.Service
	points   *points.Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(identityService *identity.Service, pointsService *points.Service, sessions *session.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		identity: identityService,
		points:   pointsService,
		sessions: sessions,
		logger:   logger,
	}
}

// GetMe handles GET /api/user/me/
//
// Returns the caller's profile, creating an anonymous user on first contact
// or when the session's user has been deleted (201), otherwise 200.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	profile, created, err := h.identity.Resolve(r.Context(), sess)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.ProfileFromModel(profile))
}

// AddPoints handles POST /api/user/me/points/
func (h *UserHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	userID := sess.UserID()
	if userID == "" {
		writeError(w, r, h.logger, model.ErrNoIdentity)
		return
	}

	amount, err := readAmount(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.points.Add(r.Context(), userID, amount); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	profile, err := h.identity.Current(r.Context(), sess)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// The increment is already applied; a failed refresh only shortens
	// the session's remaining lifetime.
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Warn("failed to refresh session", slog.Any("error", err))
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}

// readAmount extracts the amount from a JSON or form body. An empty body
// or absent field means the default amount.
func readAmount(r *http.Request) (int64, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return 0, NewInvalidRequestError("invalid form body")
		}
		if _, ok := r.PostForm["amount"]; !ok {
			return points.DefaultAmount, nil
		}
		return points.ParseAmountString(r.PostForm.Get("amount"))
	}

	var req request.AddPointsRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, NewInvalidRequestError("invalid request body")
	}
	return points.ParseAmount(req.Amount)
}
