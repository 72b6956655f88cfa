package auth

// Package auth contains simple hand-written test doubles for auth and resource ports.
// These are stateful and suitable for flow tests without codegen.

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/domain/model"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
	"golang.org/x/oauth2"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*FakeIdentityProvider)(nil)
	_ ports.ResourceStore    = (*AllowAllResources)(nil)
	_ ports.ScopedResources  = (*AllowAllResources)(nil)
)

// FakeUser is an account known to FakeIdentityProvider.
type FakeUser struct {
	Password string
	Identity domainauth.Identity
}

type fakeGrant struct {
	email     string
	expiresAt time.Time
}

type fakeCode struct {
	email     string
	challenge string
}

// FakeIdentityProvider simulates an IdP with deterministic tokens ("access-1", "refresh-1", ...).
// Any *Func field overrides the built-in behavior for that method.
type FakeIdentityProvider struct {
	PasswordSignInFunc func(ctx context.Context, email, password string) (domainauth.AuthSession, error)
	ExchangeFunc       func(ctx context.Context, in ports.ExchangeInput) (domainauth.AuthSession, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (domainauth.AuthSession, error)
	UserInfoFunc       func(ctx context.Context, accessToken string) (domainauth.Identity, error)

	// Users are keyed by email. OAuth flows sign in OAuthEmail.
	Users      map[string]FakeUser
	OAuthEmail string
	TokenTTL   time.Duration
	Now        func() time.Time

	mu           sync.Mutex
	seq          int
	access       map[string]fakeGrant
	refresh      map[string]string
	codes        map[string]fakeCode
	lastCode     string
	revoked      []string
	refreshCalls int
}

// NewFakeIdentityProvider returns a provider with one user, ada@example.com / "password".
func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{
		Users: map[string]FakeUser{
			"ada@example.com": {
				Password: "password",
				Identity: domainauth.Identity{
					ID:       "user-ada",
					Email:    "ada@example.com",
					Metadata: map[string]any{"username": "ada"},
				},
			},
		},
		OAuthEmail: "ada@example.com",
	}
}

// AddUser registers another account.
func (f *FakeIdentityProvider) AddUser(password string, id domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Users == nil {
		f.Users = map[string]FakeUser{}
	}
	f.Users[id.Email] = FakeUser{Password: password, Identity: id}
}

func (f *FakeIdentityProvider) PasswordSignIn(ctx context.Context, email, password string) (domainauth.AuthSession, error) {
	if f.PasswordSignInFunc != nil {
		return f.PasswordSignInFunc(ctx, email, password)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[email]
	if !ok || u.Password != password {
		return domainauth.AuthSession{}, apperrors.InvalidCredentials("Invalid email or password")
	}
	return f.issueLocked(email), nil
}

// AuthCodeURL records a pending code for OAuthEmail and returns a fake authorize URL.
func (f *FakeIdentityProvider) AuthCodeURL(_ context.Context, in ports.AuthCodeURLInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lazyInitLocked()
	f.seq++
	code := fmt.Sprintf("code-%d", f.seq)
	f.codes[code] = fakeCode{email: f.OAuthEmail, challenge: oauth2.S256ChallengeFromVerifier(in.Verifier)}
	f.lastCode = code

	q := url.Values{
		"state":          {in.State},
		"code_challenge": {oauth2.S256ChallengeFromVerifier(in.Verifier)},
	}
	if in.Provider != "" {
		q.Set("identity_provider", in.Provider)
	}
	if in.RedirectURL != "" {
		q.Set("redirect_uri", in.RedirectURL)
	}
	return "https://fake-idp.test/authorize?" + q.Encode(), nil
}

// LastCode returns the most recent code handed out by AuthCodeURL.
func (f *FakeIdentityProvider) LastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCode
}

func (f *FakeIdentityProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.AuthSession, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, in)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lazyInitLocked()
	pc, ok := f.codes[in.Code]
	if !ok || pc.challenge != oauth2.S256ChallengeFromVerifier(in.Verifier) {
		return domainauth.AuthSession{}, apperrors.Wrap(
			fmt.Errorf("invalid code %q", in.Code), apperrors.ErrCodeOAuthExchangeFailed, "OAuth code exchange failed")
	}
	delete(f.codes, in.Code)
	return f.issueLocked(pc.email), nil
}

func (f *FakeIdentityProvider) Refresh(ctx context.Context, refreshToken string) (domainauth.AuthSession, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx, refreshToken)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lazyInitLocked()
	email, ok := f.refresh[refreshToken]
	if !ok {
		return domainauth.AuthSession{}, apperrors.AuthenticationRequired("Session refresh rejected")
	}
	delete(f.refresh, refreshToken)
	return f.issueLocked(email), nil
}

func (f *FakeIdentityProvider) UserInfo(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	if f.UserInfoFunc != nil {
		return f.UserInfoFunc(ctx, accessToken)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lazyInitLocked()
	g, ok := f.access[accessToken]
	if !ok || !f.nowLocked().Before(g.expiresAt) {
		return domainauth.Identity{}, apperrors.AuthenticationRequired("access token rejected")
	}
	return f.Users[g.email].Identity, nil
}

func (f *FakeIdentityProvider) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lazyInitLocked()
	f.revoked = append(f.revoked, token)
	delete(f.access, token)
	delete(f.refresh, token)
	return nil
}

// Revoked returns every token passed to Revoke.
func (f *FakeIdentityProvider) Revoked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revoked...)
}

// RefreshCalls reports how many times Refresh was invoked.
func (f *FakeIdentityProvider) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// Issue mints a token pair for email directly, bypassing credentials.
func (f *FakeIdentityProvider) Issue(email string) domainauth.AuthSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(email)
}

func (f *FakeIdentityProvider) issueLocked(email string) domainauth.AuthSession {
	f.lazyInitLocked()
	f.seq++
	ttl := f.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := f.nowLocked().Add(ttl)
	at := fmt.Sprintf("access-%d", f.seq)
	rt := fmt.Sprintf("refresh-%d", f.seq)
	f.access[at] = fakeGrant{email: email, expiresAt: exp}
	f.refresh[rt] = email
	return domainauth.AuthSession{AccessToken: at, RefreshToken: rt, ExpiresAt: exp}
}

func (f *FakeIdentityProvider) lazyInitLocked() {
	if f.access == nil {
		f.access = map[string]fakeGrant{}
		f.refresh = map[string]string{}
		f.codes = map[string]fakeCode{}
	}
}

func (f *FakeIdentityProvider) nowLocked() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// AllowAllResources is an in-memory resource store that enforces no row-level policy:
// every principal sees every row. CourseOwnedBy still reports true ownership,
// so it exercises application-level ownership checks in isolation.
type AllowAllResources struct {
	mu          sync.Mutex
	nextID      int64
	courses     map[int64]model.Course
	tasks       map[int64]model.Task
	principals  []string
	TaskInserts int
}

// NewAllowAllResources creates an empty AllowAllResources.
func NewAllowAllResources() *AllowAllResources {
	return &AllowAllResources{courses: map[int64]model.Course{}, tasks: map[int64]model.Task{}}
}

// As records principalID and returns the same unscoped store.
func (a *AllowAllResources) As(principalID string) ports.ScopedResources {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.principals = append(a.principals, principalID)
	return a
}

// Principals returns every principal passed to As, in order.
func (a *AllowAllResources) Principals() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.principals...)
}

func (a *AllowAllResources) Ping(context.Context) error { return nil }

// SeedCourse stores a course directly, assigning an ID when zero.
func (a *AllowAllResources) SeedCourse(c model.Course) model.Course {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c.ID == 0 {
		a.nextID++
		c.ID = a.nextID
	}
	a.courses[c.ID] = c
	return c
}

func (a *AllowAllResources) ListCourses(context.Context) ([]model.Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Course, 0, len(a.courses))
	for _, c := range a.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *AllowAllResources) GetCourse(_ context.Context, id int64) (model.Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.courses[id]
	if !ok {
		return model.Course{}, apperrors.NotFound("Course not found")
	}
	return c, nil
}

func (a *AllowAllResources) CourseOwnedBy(_ context.Context, courseID int64, ownerID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.courses[courseID]
	return ok && c.OwnerID == ownerID, nil
}

func (a *AllowAllResources) CreateCourse(_ context.Context, in model.CourseInsert) (model.Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	c := model.Course{ID: a.nextID, OwnerID: in.OwnerID, Name: in.Name, Description: in.Description, CreatedAt: time.Now()}
	a.courses[c.ID] = c
	return c, nil
}

func (a *AllowAllResources) UpdateCourse(_ context.Context, id int64, p model.CoursePatch) (model.Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.courses[id]
	if !ok {
		return model.Course{}, apperrors.NotFound("Course not found")
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	at := p.UpdatedAt
	c.UpdatedAt = &at
	a.courses[id] = c
	return c, nil
}

func (a *AllowAllResources) DeleteCourse(_ context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.courses[id]; !ok {
		return apperrors.NotFound("Course not found")
	}
	delete(a.courses, id)
	for tid, t := range a.tasks {
		if t.CourseID == id {
			delete(a.tasks, tid)
		}
	}
	return nil
}

func (a *AllowAllResources) ListTasks(context.Context) ([]model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Task, 0, len(a.tasks))
	for _, t := range a.tasks {
		t.CourseName = a.courses[t.CourseID].Name
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *AllowAllResources) GetTask(_ context.Context, id int64) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tasks[id]
	if !ok {
		return model.Task{}, apperrors.NotFound("Task not found")
	}
	return t, nil
}

func (a *AllowAllResources) CreateTask(_ context.Context, in model.TaskInsert) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.TaskInserts++
	a.nextID++
	due := in.DueDate
	t := model.Task{
		ID:        a.nextID,
		CourseID:  in.CourseID,
		Title:     in.Title,
		Notes:     in.Notes,
		DueDate:   &due,
		Priority:  in.Priority,
		Status:    in.Status,
		CreatedAt: time.Now(),
	}
	a.tasks[t.ID] = t
	return t, nil
}

func (a *AllowAllResources) UpdateTask(_ context.Context, id int64, p model.TaskPatch) (model.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tasks[id]
	if !ok {
		return model.Task{}, apperrors.NotFound("Task not found")
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	at := p.UpdatedAt
	t.UpdatedAt = &at
	a.tasks[id] = t
	return t, nil
}

func (a *AllowAllResources) DeleteTask(_ context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.tasks[id]; !ok {
		return apperrors.NotFound("Task not found")
	}
	delete(a.tasks, id)
	return nil
}
