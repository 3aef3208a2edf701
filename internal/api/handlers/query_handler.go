package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/services"
)

// QueryHandler serves the single query/mutation endpoint. The request names
// an operation and carries its arguments; the response is either
// {"data": ...} or the error envelope.
type QueryHandler struct {
	users services.UserServiceProvider
	posts services.PostServiceProvider
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(users services.UserServiceProvider, posts services.PostServiceProvider) *QueryHandler {
	return &QueryHandler{users: users, posts: posts}
}

type queryRequest struct {
	Operation string          `json:"operation"`
	Arguments json.RawMessage `json:"arguments"`
}

type queryResponse struct {
	Data any `json:"data"`
}

// Serve dispatches a named operation.
func (h *QueryHandler) Serve(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apperr.Error{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	authn := auth.ResultFromContext(r.Context())

	result, err := h.dispatch(r, authn, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Data: result})
}

func (h *QueryHandler) dispatch(r *http.Request, authn auth.Result, req queryRequest) (any, error) {
	ctx := r.Context()

	switch req.Operation {
	case "createUser":
		var args struct {
			UserInput services.RegisterInput `json:"userInput"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.users.Register(ctx, args.UserInput)

	case "login":
		var args struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.users.Login(ctx, args.Email, args.Password)

	case "posts":
		var args struct {
			Page *int `json:"page"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		page := 1
		if args.Page != nil {
			page = *args.Page
		}
		return h.posts.List(ctx, authn, page)

	case "post":
		var args struct {
			ID string `json:"id"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.posts.Get(ctx, authn, args.ID)

	case "createPost":
		var args struct {
			PostInput services.PostInput `json:"postInput"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.posts.Create(ctx, authn, args.PostInput)

	case "updatePost":
		var args struct {
			ID        string             `json:"id"`
			PostInput services.PostInput `json:"postInput"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.posts.Update(ctx, authn, args.ID, args.PostInput)

	case "deletePost":
		var args struct {
			ID string `json:"id"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.posts.Delete(ctx, authn, args.ID)

	case "user":
		return h.users.CurrentUser(ctx, authn)

	case "updateStatus":
		var args struct {
			Status string `json:"status"`
		}
		if err := decodeArguments(req.Arguments, &args); err != nil {
			return nil, err
		}
		return h.users.UpdateStatus(ctx, authn, args.Status)

	default:
		return nil, &apperr.Error{Status: http.StatusBadRequest, Message: "Unknown operation: " + req.Operation}
	}
}

func decodeArguments(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &apperr.Error{Status: http.StatusBadRequest, Message: "Invalid arguments"}
	}
	return nil
}
