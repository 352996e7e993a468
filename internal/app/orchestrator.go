package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"uigen/internal/domain"
	"uigen/internal/observability"
)

// CredentialActions are the sign-in and sign-up actions. A rejected attempt is
// reported in the result; an error means the action itself failed.
type CredentialActions interface {
	SignIn(ctx context.Context, email, password string) (domain.AuthResult, error)
	SignUp(ctx context.Context, email, password string) (domain.AuthResult, error)
}

// AnonWork supplies and clears the work done before authentication.
type AnonWork interface {
	GetAnonWork(ctx context.Context) (*domain.AnonWorkSnapshot, error)
	ClearAnonWork(ctx context.Context) error
}

// Projects lists and creates the signed-in user's projects.
type Projects interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, in domain.NewProject) (*domain.Project, error)
}

// Navigator moves the user to a path. It does not report failure.
type Navigator interface {
	GoTo(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// GoTo calls f(path).
func (f NavigatorFunc) GoTo(path string) { f(path) }

// Disposition names the reconciliation outcome.
type Disposition string

const (
	DispositionMigrateAnonWork Disposition = "migrate-anon-work"
	DispositionResumeRecent    Disposition = "resume-recent"
	DispositionFreshProject    Disposition = "fresh-project"
)

// Outcome is the result of one reconciliation.
type Outcome struct {
	Disposition Disposition `json:"disposition"`
	ProjectID   string      `json:"projectId"`
}

// Path is where the user lands after the outcome.
func (o Outcome) Path() string {
	return "/" + o.ProjectID
}

var errNoDisposition = errors.New("reconcile: no disposition applied")

// reconcileState is what the dispositions see. The snapshot is read once,
// before any disposition is evaluated.
type reconcileState struct {
	snapshot *domain.AnonWorkSnapshot
}

// A disposition reports ok=false when it does not apply.
type disposition struct {
	kind  Disposition
	apply func(ctx context.Context, st *reconcileState) (projectID string, ok bool, err error)
}

// AuthOrchestrator runs a credential action and, on success, decides which
// project the user lands on.
type AuthOrchestrator struct {
	actions  CredentialActions
	anon     AnonWork
	projects Projects
	nav      Navigator

	now          func() time.Time
	designNumber func() int
	logger       *slog.Logger

	loading atomic.Bool

	mu   sync.Mutex
	last *Outcome
}

// OrchestratorOption configures an AuthOrchestrator.
type OrchestratorOption func(*AuthOrchestrator)

// WithOrchestratorClock overrides the clock used for project names.
func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *AuthOrchestrator) { o.now = now }
}

// WithDesignNumber overrides the number source for fresh project names.
func WithDesignNumber(next func() int) OrchestratorOption {
	return func(o *AuthOrchestrator) { o.designNumber = next }
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *AuthOrchestrator) { o.logger = l }
}

// NewAuthOrchestrator wires an orchestrator to its collaborators.
func NewAuthOrchestrator(actions CredentialActions, anon AnonWork, projects Projects, nav Navigator, opts ...OrchestratorOption) *AuthOrchestrator {
	o := &AuthOrchestrator{
		actions:      actions,
		anon:         anon,
		projects:     projects,
		nav:          nav,
		now:          time.Now,
		designNumber: func() int { return rand.Intn(100000) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsLoading reports whether a sign-in or sign-up is in flight. Callers use it
// to refuse duplicate submissions; the orchestrator itself does not.
func (o *AuthOrchestrator) IsLoading() bool {
	return o.loading.Load()
}

// LastOutcome returns the outcome of the most recent successful
// reconciliation.
func (o *AuthOrchestrator) LastOutcome() (Outcome, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Outcome{}, false
	}
	return *o.last, true
}

// SignIn signs the user in and reconciles their work.
func (o *AuthOrchestrator) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	return o.run(ctx, "signin", o.actions.SignIn, email, password)
}

// SignUp registers the user and reconciles their work.
func (o *AuthOrchestrator) SignUp(ctx context.Context, email, password string) (domain.AuthResult, error) {
	return o.run(ctx, "signup", o.actions.SignUp, email, password)
}

type credentialAction func(ctx context.Context, email, password string) (domain.AuthResult, error)

func (o *AuthOrchestrator) run(ctx context.Context, name string, action credentialAction, email, password string) (domain.AuthResult, error) {
	o.loading.Store(true)
	defer o.loading.Store(false)

	res, err := action(ctx, email, password)
	if err != nil {
		observability.RecordAuthAttempt(name, "error")
		return res, err
	}
	if !res.Success {
		observability.RecordAuthAttempt(name, "rejected")
		return res, nil
	}
	observability.RecordAuthAttempt(name, "success")

	out, err := o.reconcile(ctx)
	if err != nil {
		return res, err
	}

	o.mu.Lock()
	o.last = &out
	o.mu.Unlock()

	observability.RecordReconcile(string(out.Disposition))
	o.log(ctx).Info("reconciled", "action", name, "disposition", out.Disposition, "project_id", out.ProjectID)
	o.nav.GoTo(out.Path())
	return res, nil
}

func (o *AuthOrchestrator) log(ctx context.Context) *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return observability.LoggerFromContext(ctx)
}

func (o *AuthOrchestrator) dispositions() []disposition {
	return []disposition{
		{DispositionMigrateAnonWork, o.migrateAnonWork},
		{DispositionResumeRecent, o.resumeRecent},
		{DispositionFreshProject, o.freshProject},
	}
}

func (o *AuthOrchestrator) reconcile(ctx context.Context) (Outcome, error) {
	snap, err := o.anon.GetAnonWork(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read anonymous work: %w", err)
	}
	st := &reconcileState{snapshot: snap}

	for _, d := range o.dispositions() {
		id, ok, err := d.apply(ctx, st)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", d.kind, err)
		}
		if ok {
			return Outcome{Disposition: d.kind, ProjectID: id}, nil
		}
	}
	return Outcome{}, errNoDisposition
}

// migrateAnonWork turns anonymous work into a project. Clearing happens after
// the project exists; a failed clear is logged and the sign-in proceeds, so
// the same work may be migrated again later.
func (o *AuthOrchestrator) migrateAnonWork(ctx context.Context, st *reconcileState) (string, bool, error) {
	if !st.snapshot.HasWork() {
		return "", false, nil
	}

	p, err := o.projects.CreateProject(ctx, domain.NewProject{
		Name:     "Design from " + o.now().Format("Jan 2, 2006 3:04:05 PM"),
		Messages: st.snapshot.Messages,
		Data:     st.snapshot.FileSystemData,
	})
	if err != nil {
		return "", false, fmt.Errorf("create project: %w", err)
	}

	if err := o.anon.ClearAnonWork(ctx); err != nil {
		o.log(ctx).Warn("clear anonymous work failed", "project_id", p.ID, "error", err)
	}
	return p.ID, true, nil
}

func (o *AuthOrchestrator) resumeRecent(ctx context.Context, _ *reconcileState) (string, bool, error) {
	projects, err := o.projects.ListProjects(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		return "", false, nil
	}
	return projects[0].ID, true, nil
}

func (o *AuthOrchestrator) freshProject(ctx context.Context, _ *reconcileState) (string, bool, error) {
	p, err := o.projects.CreateProject(ctx, domain.NewProject{
		Name:     fmt.Sprintf("New Design #%d", o.designNumber()),
		Messages: []domain.ChatMessage{},
		Data:     domain.FileSystemData{},
	})
	if err != nil {
		return "", false, fmt.Errorf("create project: %w", err)
	}
	return p.ID, true, nil
}
