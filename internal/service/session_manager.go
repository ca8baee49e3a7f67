package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnhub-io/learnhub-api/internal/models"
	"github.com/learnhub-io/learnhub-api/internal/repository"
	"github.com/learnhub-io/learnhub-api/pkg/config"
	"github.com/learnhub-io/learnhub-api/pkg/jobs"
)

// AuthBroker is the process-wide auth state change feed. Subscribers receive
// events in the order they are published; callbacks must not block.
type AuthBroker struct {
	mu   sync.Mutex
	subs map[int]func(models.AuthEvent)
	next int
}

// NewAuthBroker creates an empty broker.
func NewAuthBroker() *AuthBroker {
	return &AuthBroker{subs: make(map[int]func(models.AuthEvent))}
}

// Subscribe registers a callback and returns its unsubscribe handle. After
// the handle is called no further events are delivered to the callback.
func (b *AuthBroker) Subscribe(fn func(models.AuthEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers an event to every current subscriber.
func (b *AuthBroker) Publish(event models.AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.subs {
		fn(event)
	}
}

type sessionProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}

type sessionRevoker interface {
	SignOut(ctx context.Context, refreshToken string) error
}

// RestoreFunc fetches the session persisted from a previous run, if any.
type RestoreFunc func(ctx context.Context) (*models.Session, error)

const provisionJobType = "profile.provision"

// SessionManager mirrors the backend's auth state into cached process state
// and guarantees every newly signed-in user ends up with exactly one profile.
// Provisioning runs on a background queue so it never sits on the sign-in
// critical path; failures are logged and retried, never surfaced to sign-in.
type SessionManager struct {
	broker   *AuthBroker
	profiles sessionProfileStore
	revoker  sessionRevoker
	logger   *zap.Logger
	queue    *jobs.Queue

	restoreTimeout time.Duration

	mu          sync.RWMutex
	session     *models.Session
	user        *models.UserInfo
	loading     bool
	unsubscribe func()
}

// NewSessionManager wires the manager to the broker and profile store. The
// revoker may be nil when sign-out is handled elsewhere.
func NewSessionManager(broker *AuthBroker, profiles sessionProfileStore, revoker sessionRevoker, logger *zap.Logger, jobsCfg config.JobsConfig) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &SessionManager{
		broker:         broker,
		profiles:       profiles,
		revoker:        revoker,
		logger:         logger,
		restoreTimeout: 10 * time.Second,
		loading:        true,
	}
	m.queue = jobs.NewQueue(provisionJobType, m.handleProvisionJob, jobs.QueueConfig{
		Workers:    jobsCfg.Workers,
		BufferSize: jobsCfg.BufferSize,
		MaxRetries: jobsCfg.MaxRetries,
		RetryDelay: jobsCfg.RetryDelay,
		Logger:     logger,
	})
	return m
}

// Start restores any persisted session and registers the standing auth
// subscription. A restore failure leaves the manager at "no user, not
// loading"; the restore call is bounded by a timeout so Start never hangs.
func (m *SessionManager) Start(ctx context.Context, restore RestoreFunc) {
	m.queue.Start(ctx)

	var session *models.Session
	if restore != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, m.restoreTimeout)
		restored, err := restore(fetchCtx)
		cancel()
		if err != nil {
			m.logger.Warn("session restore failed", zap.Error(err))
		} else {
			session = restored
		}
	}

	m.mu.Lock()
	m.session = session
	if session != nil {
		user := session.User
		m.user = &user
	}
	m.loading = false
	m.unsubscribe = m.broker.Subscribe(m.handleAuthEvent)
	m.mu.Unlock()
}

// Close unregisters the auth subscription and stops the provisioning queue.
func (m *SessionManager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	m.queue.Stop()
}

// CurrentUser returns the cached authenticated user, or nil.
func (m *SessionManager) CurrentUser() *models.UserInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// CurrentSession returns the cached session, or nil.
func (m *SessionManager) CurrentSession() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	session := *m.session
	return &session
}

// IsLoading reports whether the initial session fetch is still pending.
func (m *SessionManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// SignOut requests backend session termination. The cached state is cleared
// by the subscription callback once the SIGNED_OUT event arrives.
func (m *SessionManager) SignOut(ctx context.Context) error {
	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()
	if session == nil || m.revoker == nil {
		return nil
	}
	return m.revoker.SignOut(ctx, session.RefreshToken)
}

func (m *SessionManager) handleAuthEvent(event models.AuthEvent) {
	m.mu.Lock()
	prev := m.user
	if event.Type == models.AuthEventSignedOut || event.Session == nil {
		m.session = nil
		m.user = nil
	} else {
		m.session = event.Session
		user := event.Session.User
		m.user = &user
	}
	m.loading = false
	m.mu.Unlock()

	if event.Type != models.AuthEventSignedIn || event.Session == nil {
		return
	}
	if prev != nil && prev.ID == event.Session.User.ID {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: provisionJobType, Payload: event.Session.User}
	if err := m.queue.Enqueue(job); err != nil {
		m.logger.Warn("failed to schedule profile provisioning", zap.String("user_id", event.Session.User.ID), zap.Error(err))
	}
}

func (m *SessionManager) handleProvisionJob(ctx context.Context, job jobs.Job) error {
	user, ok := job.Payload.(models.UserInfo)
	if !ok {
		m.logger.Error("unexpected provisioning payload", zap.String("job_id", job.ID))
		return nil
	}
	return m.provisionProfile(ctx, user)
}

// provisionProfile creates the user's profile if it does not exist yet.
// The check-then-insert pair can race with another process; the unique
// constraint on user_id resolves the race and the duplicate insert is
// treated as success.
func (m *SessionManager) provisionProfile(ctx context.Context, user models.UserInfo) error {
	if _, err := m.profiles.FindByUserID(ctx, user.ID); err == nil {
		return nil
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("check existing profile: %w", err)
	}

	role := models.ProfileRoleStudent
	if user.Role == string(models.ProfileRoleInstructor) {
		role = models.ProfileRoleInstructor
	}
	profile := &models.Profile{
		UserID:   user.ID,
		FullName: user.FullName,
		Role:     role,
	}
	if err := m.profiles.Create(ctx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			m.logger.Debug("profile already provisioned", zap.String("user_id", user.ID))
			return nil
		}
		return fmt.Errorf("create profile: %w", err)
	}
	m.logger.Info("profile provisioned", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return nil
}
