package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sitecms/internal/auth"
	"sitecms/internal/storage"
)

// AuthHandler issues and clears the session credential.
type AuthHandler struct {
	Store    storage.Store
	Sessions *auth.Manager
	Logger   *slog.Logger
}

func NewAuthHandler(store storage.Store, sessions *auth.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		Store:    store,
		Sessions: sessions,
		Logger:   logger,
	}
}

func (h *AuthHandler) HandleRegister() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// already logged in, send to the dashboard
		if h.Sessions.FromRequest(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		if password != confirm {
			writeMessage(w, http.StatusBadRequest, "Passwords do not match")
			return
		}

		if len(username) < 3 || len(password) < 8 {
			writeMessage(w, http.StatusBadRequest, "Inputs too short")
			return
		}

		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			internalError(w, h.Logger, "Failed to register", err)
			return
		}

		if _, err = h.Store.CreateUser(r.Context(), username, string(hashedPwd), "user"); err != nil {
			switch {
			case errors.Is(err, storage.ErrUniqueViolation):
				writeMessage(w, http.StatusConflict, "Username already taken")
			default:
				internalError(w, h.Logger, "Failed to register", err)
			}
			return
		}

		h.Logger.Info("user registered", "username", username)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func (h *AuthHandler) HandleLogin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// already logged in, send to the dashboard
		if h.Sessions.FromRequest(r) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")

		user, err := h.Store.GetUserByUsername(r.Context(), username)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
			default:
				internalError(w, h.Logger, "Failed to log in", err)
			}
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}

		token, err := h.Sessions.Issue(user)
		if err != nil {
			internalError(w, h.Logger, "Failed to log in", err)
			return
		}

		http.SetCookie(w, h.Sessions.Cookie(token))

		h.Logger.Info("user logged in", "id", user.ID, "username", user.Username)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
}

func (h *AuthHandler) HandleLogout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, h.Sessions.ClearCookie())

		h.Logger.Info("user logged out")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// HandleSession returns the decoded session, or null when the request
// carries no usable credential.
func (h *AuthHandler) HandleSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.Sessions.FromRequest(r)
		if session == nil {
			writeJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": session})
	})
}
