//go:build unit

// Package memstore provides an in-memory shared.UnitOfWork with real
// per-date mutexes, so command tests can exercise lock ordering,
// all-or-nothing commits and version conflicts without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"island-reservations/internal/domain/availability"
	"island-reservations/internal/domain/reservation"
	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	locks        map[time.Time]*sync.Mutex
	reservations map[uuid.UUID]*reservation.Reservation
	days         map[time.Time]availability.Day
	config       map[string]int
}

func NewStore() *Store {
	return &Store{
		locks:        make(map[time.Time]*sync.Mutex),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		days:         make(map[time.Time]availability.Day),
		config:       make(map[string]int),
	}
}

func (s *Store) SeedConfig(name string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[name] = value
}

// Remaining returns the committed ledger value for a date, or the given
// fallback when the date was never materialized.
func (s *Store) Remaining(date time.Time, fallback int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if day, ok := s.days[dateKey(date)]; ok {
		return day.Remaining()
	}
	return fallback
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := &memTx{
		store:      s,
		stagedRes:  make(map[uuid.UUID]*reservation.Reservation),
		stagedDays: make(map[time.Time]availability.Day),
		stagedCfg:  make(map[string]int),
	}
	defer tx.unlockAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

// Direct repositories operate on committed state. They back the read
// paths that run outside Within.

func (s *Store) ReservationRepo() shared.ReservationRepository {
	return &reservationRepo{store: s}
}

func (s *Store) AvailabilityRepo() shared.AvailabilityRepository {
	return &availabilityRepo{store: s}
}

func (s *Store) ConfigRepo() shared.ConfigRepository {
	return &configRepo{store: s}
}

func (s *Store) lockFor(date time.Time) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dateKey(date)
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

type memTx struct {
	store      *Store
	stagedRes  map[uuid.UUID]*reservation.Reservation
	stagedDays map[time.Time]availability.Day
	stagedCfg  map[string]int
	held       []*sync.Mutex
}

func (t *memTx) Reservations() shared.ReservationRepository {
	return &reservationRepo{store: t.store, tx: t}
}

func (t *memTx) Ledger() shared.AvailabilityRepository {
	return &availabilityRepo{store: t.store, tx: t}
}

func (t *memTx) DateLocks() shared.DateLockRepository {
	return &dateLockRepo{tx: t}
}

func (t *memTx) Config() shared.ConfigRepository {
	return &configRepo{store: t.store, tx: t}
}

func (t *memTx) DB() db.DBTX { return nil }

// commit publishes staged changes while the date locks are still held,
// so waiters observe them the moment they acquire the lock.
func (t *memTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, res := range t.stagedRes {
		t.store.reservations[id] = res
	}
	for key, day := range t.stagedDays {
		t.store.days[key] = day
	}
	for name, value := range t.stagedCfg {
		t.store.config[name] = value
	}
}

func (t *memTx) unlockAll() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

type dateLockRepo struct {
	tx *memTx
}

func (r *dateLockRepo) Acquire(_ context.Context, _ db.DBTX, dates []time.Time) error {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	for _, date := range sorted {
		m := r.tx.store.lockFor(date)
		m.Lock()
		r.tx.held = append(r.tx.held, m)
	}
	return nil
}

type reservationRepo struct {
	store *Store
	tx    *memTx
}

func (r *reservationRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.lookup(id)
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return cloneReservation(res), nil
}

func (r *reservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	stamped := reservation.ReconstructReservation(
		res.ID(), res.Guest(), res.Dates(), res.PartySize(), res.Status(),
		res.Version(), time.Now().UTC(), time.Now().UTC(),
	)
	if r.tx != nil {
		r.tx.stagedRes[res.ID()] = stamped
	} else {
		r.store.mu.Lock()
		r.store.reservations[res.ID()] = stamped
		r.store.mu.Unlock()
	}
	return res.ID(), nil
}

func (r *reservationRepo) Update(_ context.Context, _ db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error) {
	current, ok := r.lookup(res.ID())
	if !ok {
		return 0, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	if current.Version() != expectedVersion {
		return 0, infra.WrapRepoErr("version mismatch", nil, infra.KindConflict)
	}

	next := reservation.ReconstructReservation(
		res.ID(), res.Guest(), res.Dates(), res.PartySize(), res.Status(),
		expectedVersion+1, current.CreatedAt(), time.Now().UTC(),
	)
	if r.tx != nil {
		r.tx.stagedRes[res.ID()] = next
	} else {
		r.store.mu.Lock()
		r.store.reservations[res.ID()] = next
		r.store.mu.Unlock()
	}
	return next.Version(), nil
}

func (r *reservationRepo) Save(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int32) (int32, error) {
	return r.Update(ctx, dbtx, res, expectedVersion)
}

func (r *reservationRepo) lookup(id uuid.UUID) (*reservation.Reservation, bool) {
	if r.tx != nil {
		if res, ok := r.tx.stagedRes[id]; ok {
			return res, true
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	return res, ok
}

type availabilityRepo struct {
	store *Store
	tx    *memTx
}

func (r *availabilityRepo) FindByRange(_ context.Context, _ db.DBTX, from, to time.Time) ([]availability.Day, error) {
	var days []availability.Day
	for key, day := range r.snapshot() {
		if key.Before(dateKey(from)) || key.After(dateKey(to)) {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date().Before(days[j].Date()) })
	return days, nil
}

func (r *availabilityRepo) FindByDates(_ context.Context, _ db.DBTX, dates []time.Time) ([]availability.Day, error) {
	snapshot := r.snapshot()
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var days []availability.Day
	for _, date := range sorted {
		if day, ok := snapshot[dateKey(date)]; ok {
			days = append(days, day)
		}
	}
	return days, nil
}

func (r *availabilityRepo) Upsert(_ context.Context, _ db.DBTX, days []availability.Day) error {
	if r.tx != nil {
		for _, day := range days {
			r.tx.stagedDays[dateKey(day.Date())] = day
		}
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, day := range days {
		r.store.days[dateKey(day.Date())] = day
	}
	return nil
}

func (r *availabilityRepo) snapshot() map[time.Time]availability.Day {
	r.store.mu.Lock()
	merged := make(map[time.Time]availability.Day, len(r.store.days))
	for key, day := range r.store.days {
		merged[key] = day
	}
	r.store.mu.Unlock()

	if r.tx != nil {
		for key, day := range r.tx.stagedDays {
			merged[key] = day
		}
	}
	return merged
}

type configRepo struct {
	store *Store
	tx    *memTx
}

func (r *configRepo) GetInt(_ context.Context, _ db.DBTX, name string) (int, error) {
	if r.tx != nil {
		if value, ok := r.tx.stagedCfg[name]; ok {
			return value, nil
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	value, ok := r.store.config[name]
	if !ok {
		return 0, infra.WrapRepoErr("configuration not found", nil, infra.KindNotFound)
	}
	return value, nil
}

func (r *configRepo) Insert(_ context.Context, _ db.DBTX, name string, value int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.config[name]; ok {
		return infra.WrapRepoErr("configuration already exists", nil, infra.KindDuplicateKey)
	}
	if r.tx != nil {
		r.tx.stagedCfg[name] = value
		return nil
	}
	r.store.config[name] = value
	return nil
}

func cloneReservation(res *reservation.Reservation) *reservation.Reservation {
	return reservation.ReconstructReservation(
		res.ID(), res.Guest(), res.Dates(), res.PartySize(), res.Status(),
		res.Version(), res.CreatedAt(), res.UpdatedAt(),
	)
}

func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
