package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/services/auth"
	"github.com/mcoot/gomoku-go/internal/services/bot"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeInvalidBoardSize   = "INVALID_BOARD_SIZE"
	CodeUnknownStrategy    = "UNKNOWN_STRATEGY"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotGameOwner       = "NOT_GAME_OWNER"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeAITurnPending      = "AI_TURN_PENDING"
	CodeCellOccupied       = "CELL_OCCUPIED"
	CodeGameComplete       = "GAME_COMPLETE"
	CodeGameAbandoned      = "GAME_ABANDONED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidDisplayName = "INVALID_DISPLAY_NAME"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

var mapping = []struct {
	target error
	status int
	code   string
	msg    string
}{
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound, "Player not found"},
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound, "Game not found"},
	{model.ErrBoardNotFound, http.StatusNotFound, CodeGameNotFound, "Game not found"},
	{model.ErrNotGameOwner, http.StatusForbidden, CodeNotGameOwner, "This game belongs to another player"},
	{model.ErrNotPlayerTurn, http.StatusConflict, CodeNotYourTurn, "Not your turn"},
	{model.ErrAITurnPending, http.StatusConflict, CodeAITurnPending, "The AI is still choosing its move"},
	{model.ErrCellOccupied, http.StatusConflict, CodeCellOccupied, "Cell is already occupied"},
	{model.ErrGameComplete, http.StatusConflict, CodeGameComplete, "Game is already over"},
	{model.ErrGameAbandoned, http.StatusConflict, CodeGameAbandoned, "Game has been abandoned"},
	{model.ErrInvalidPosition, http.StatusBadRequest, CodeInvalidPosition, "Invalid board position"},
	{model.ErrInvalidBoardSize, http.StatusBadRequest, CodeInvalidBoardSize, "Board size must be between 5 and 25"},
	{model.ErrUnknownStrategy, http.StatusBadRequest, CodeUnknownStrategy, "Unknown bot strategy"},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password"},
	{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired session"},
	{auth.ErrUsernameExists, http.StatusConflict, CodeUsernameExists, "Username already exists"},
	{auth.ErrInvalidUsername, http.StatusBadRequest, CodeInvalidUsername, auth.ErrInvalidUsername.Error()},
	{auth.ErrWeakPassword, http.StatusBadRequest, CodeWeakPassword, auth.ErrWeakPassword.Error()},
	{auth.ErrInvalidDisplayName, http.StatusBadRequest, CodeInvalidDisplayName, auth.ErrInvalidDisplayName.Error()},

	{bot.ErrServiceClosed, http.StatusServiceUnavailable, CodeUnavailable, "Server is shutting down"},
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range mapping {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, m.msg}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewUnavailableError reports a request that could not be served right now
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
