// Package session holds the client-side source of truth for "who is the
// current actor and what may they see".
//
// A Store owns the current session, derives the actor's profile and admin
// flag from it, and publishes the result as a Snapshot. Every derivation pass
// reserves a generation number when it starts; a pass commits only while it
// is still the most recently started one, so a slow, stale pass can never
// overwrite a newer result.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

var (
	ErrClosed         = errors.New("session store closed")
	ErrAlreadyStarted = errors.New("session store already started")
)

// Store derives profile and authorization facts from the current session.
type Store struct {
	sessions ports.SessionSource
	profiles ports.ProfileSource
	admins   ports.AdminSource
	log      zerolog.Logger

	mu      sync.Mutex
	snap    Snapshot
	latest  uint64          // generation of the most recently started pass
	current *domain.Session // session of the most recently started pass
	subs    map[uint64]func(Snapshot)
	nextSub uint64
	started bool
	closed  bool

	unsubscribe func()
	wake        chan struct{}
	notifyDone  chan struct{}
	passes      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a Store in the Uninitialized state. Call Start to load the
// current session and Close to release it.
func New(sessions ports.SessionSource, profiles ports.ProfileSource, admins ports.AdminSource, log zerolog.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		sessions: sessions,
		profiles: profiles,
		admins:   admins,
		log:      log.With().Str("component", "session_store").Logger(),
		snap: Snapshot{
			State:   StateUninitialized,
			Loading: true,
			Profile: domain.DefaultProfile(),
		},
		subs:       make(map[uint64]func(Snapshot)),
		wake:       make(chan struct{}, 1),
		notifyDone: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	go s.notifyLoop()
	return s
}

// Start subscribes to session changes and runs the first derivation. It
// returns once that derivation has settled.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	unsubscribe := s.sessions.SubscribeToSessionChanges(s.OnSessionChange)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return ErrClosed
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	return s.Revalidate(ctx)
}

// Close tears down the session subscription and waits for in-flight passes.
// Subscribers receive no further snapshots.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	close(s.wake)
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancel()
	s.passes.Wait()
	<-s.notifyDone
}

// Session returns the last committed session, or nil when unauthenticated.
func (s *Store) Session() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Session
}

// Loading reports whether a derivation pass is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Loading
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to receive the snapshot after changes. Deliveries
// happen on a single goroutine in commit order; bursts are coalesced so fn
// always ends up with the latest snapshot. fn may call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetNewStudyNotification toggles the "new study acquired" badge. The flag is
// cleared whenever the signed-in identity changes.
func (s *Store) SetNewStudyNotification(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.snap.HasNewStudyNotification == v {
		return
	}
	s.snap.HasNewStudyNotification = v
	s.changedLocked()
}

// OnSessionChange handles a session transition pushed by the auth subsystem.
// The derivation runs in the background; watch Loading or Subscribe for the
// result.
func (s *Store) OnSessionChange(ev domain.AuthEvent) {
	gen, ok := s.beginPass(ev.Session, true)
	if !ok {
		return
	}
	s.log.Debug().
		Str("event", string(ev.Kind)).
		Str("user_id", userID(ev.Session)).
		Uint64("generation", gen).
		Msg("session changed")
	go s.runPass(s.ctx, gen, ev.Session)
}

// Revalidate re-reads the current session from the auth subsystem, as when
// the application returns to the foreground, and derives from it. A failure
// to read the session degrades to anonymous.
func (s *Store) Revalidate(ctx context.Context) error {
	gen, ok := s.beginPass(nil, false)
	if !ok {
		return ErrClosed
	}

	sess, err := s.sessions.GetCurrentSession(ctx)
	if err != nil {
		s.log.Warn().Err(err).Uint64("generation", gen).Msg("get current session failed, continuing anonymous")
		sess = nil
	}
	s.adopt(gen, sess)
	s.runPass(ctx, gen, sess)
	return nil
}

// Refetch re-derives profile and admin facts for the current identity and
// returns once the pass has settled. It is a no-op when nobody is signed in.
func (s *Store) Refetch(ctx context.Context) error {
	gen, sess, err := s.beginRefetch()
	if err != nil || sess == nil {
		return err
	}
	s.log.Debug().Str("user_id", sess.User.ID).Uint64("generation", gen).Msg("refetching profile")
	s.runPass(ctx, gen, sess)
	return nil
}

// beginPass reserves the next generation and flips the snapshot to Loading.
// Facts from the previous pass stay visible until the new one commits. When
// known is set, sess becomes the identity used by Refetch.
func (s *Store) beginPass(sess *domain.Session, known bool) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	if known {
		s.current = sess
	}
	return s.reserveLocked(), true
}

// beginRefetch captures the identity of the latest pass and reserves the
// next generation for it in one critical section, so a session change can
// not slip in between. It reserves nothing when nobody is signed in.
func (s *Store) beginRefetch() (uint64, *domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, ErrClosed
	}
	if s.current == nil {
		return 0, nil, nil
	}
	return s.reserveLocked(), s.current, nil
}

func (s *Store) reserveLocked() uint64 {
	s.latest++
	s.passes.Add(1)
	if s.snap.State != StateLoading || !s.snap.Loading {
		s.snap.State = StateLoading
		s.snap.Loading = true
		s.changedLocked()
	}
	return s.latest
}

// adopt records the session resolved by pass gen if it is still the latest.
func (s *Store) adopt(gen uint64, sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.latest {
		s.current = sess
	}
}

func (s *Store) runPass(ctx context.Context, gen uint64, sess *domain.Session) {
	defer s.passes.Done()

	profile, isAdmin := domain.DefaultProfile(), false
	if sess != nil {
		profile, isAdmin = s.derive(ctx, gen, *sess)
	}

	if !s.commit(gen, sess, profile, isAdmin) {
		s.log.Debug().Uint64("generation", gen).Msg("discarding stale derivation")
	}
}

// derive runs the profile and admin lookups concurrently and resolves both
// into facts. It never fails: errors degrade to defaults.
func (s *Store) derive(ctx context.Context, gen uint64, sess domain.Session) (domain.Profile, bool) {
	var (
		profile domain.Lookup[domain.ProfileRecord]
		admin   domain.Lookup[domain.AdminMembership]
		g       errgroup.Group
	)
	g.Go(func() error {
		profile = s.profiles.FetchProfile(ctx, sess)
		return nil
	})
	g.Go(func() error {
		admin = s.admins.FetchAdminMembership(ctx, sess)
		return nil
	})
	_ = g.Wait()

	log := s.log.With().Str("user_id", sess.User.ID).Uint64("generation", gen).Logger()
	return resolveProfile(log, sess.User, profile), resolveAdmin(log, admin)
}

func resolveProfile(log zerolog.Logger, id domain.Identity, l domain.Lookup[domain.ProfileRecord]) domain.Profile {
	switch l.Status {
	case domain.LookupFound:
		return domain.ProfileFromRecord(l.Value)
	case domain.LookupNotFound:
		log.Debug().Msg("profile not found, using identity metadata")
	default:
		log.Warn().Err(l.Err).Msg("profile lookup failed, using identity metadata")
	}
	return domain.ProfileFromMetadata(id.Metadata)
}

func resolveAdmin(log zerolog.Logger, l domain.Lookup[domain.AdminMembership]) bool {
	switch l.Status {
	case domain.LookupFound:
		return true
	case domain.LookupNotFound:
		return false
	default:
		log.Error().Err(l.Err).Msg("admin lookup failed, treating as non-admin")
		return false
	}
}

// commit publishes the facts of pass gen in a single snapshot swap. It
// reports false when a newer pass has started since gen.
func (s *Store) commit(gen uint64, sess *domain.Session, profile domain.Profile, isAdmin bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.latest {
		return false
	}
	if userID(s.snap.Session) != userID(sess) {
		s.snap.HasNewStudyNotification = false
	}
	s.snap.Session = sess
	s.snap.Profile = profile
	s.snap.IsAdmin = isAdmin
	s.snap.State = StateReady
	s.snap.Loading = false
	s.snap.Generation = gen
	s.changedLocked()
	return true
}

// changedLocked bumps the snapshot version and wakes the notifier. Callers
// hold s.mu and have checked s.closed.
func (s *Store) changedLocked() {
	s.snap.version++
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) notifyLoop() {
	defer close(s.notifyDone)

	var delivered uint64
	for range s.wake {
		s.mu.Lock()
		snap := s.snap
		subs := make([]func(Snapshot), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		if snap.version == delivered {
			continue
		}
		delivered = snap.version
		for _, fn := range subs {
			fn(snap)
		}
	}
}
