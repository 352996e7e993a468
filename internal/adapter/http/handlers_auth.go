package adapthttp

import (
	"context"
	"errors"
	"net/http"

	"uigen/internal/app"
	"uigen/internal/domain"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialAction func(ctx context.Context, email, password string) (domain.AuthResult, error)

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, func(o *app.AuthOrchestrator) credentialAction { return o.SignUp })
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, func(o *app.AuthOrchestrator) credentialAction { return o.SignIn })
}

// handleCredentials runs one orchestrated sign-in or sign-up. The navigation
// target is returned to the client as the redirect.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request, pick func(*app.AuthOrchestrator) credentialAction) {
	var body credentials
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var redirect string
	nav := app.NavigatorFunc(func(path string) { redirect = path })
	orch := app.NewAuthOrchestrator(s.auth, s.anon, s.projects, nav, s.orchestratorOpts...)

	run := pick(orch)
	res, err := run(r.Context(), body.Email, body.Password)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusOK, res)
		return
	}

	out, _ := orch.LastOutcome()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"redirect":    redirect,
		"disposition": out.Disposition,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser(r.Context())
	if errors.Is(err, app.ErrUnauthenticated) {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          map[string]any{"id": user.ID, "email": user.Email},
	})
}
