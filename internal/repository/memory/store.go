// Package memory is an in-process repository.Store used by tests and
// local tooling.  Transactions are serialized and applied to a private
// copy of the data, which replaces the shared copy only on success.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type data struct {
	reservations   map[string]model.Reservation
	tables         map[string]model.RestaurantTable
	units          map[string]model.AccomUnit
	users          map[string]model.User
	restaurants    map[string]model.Restaurant
	accommodations map[string]model.Accommodation
	places         map[string]model.Place
}

func newData() *data {
	return &data{
		reservations:   map[string]model.Reservation{},
		tables:         map[string]model.RestaurantTable{},
		units:          map[string]model.AccomUnit{},
		users:          map[string]model.User{},
		restaurants:    map[string]model.Restaurant{},
		accommodations: map[string]model.Accommodation{},
		places:         map[string]model.Place{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.tables {
		c.tables[k] = v
	}
	for k, v := range d.units {
		c.units[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.restaurants {
		c.restaurants[k] = v
	}
	for k, v := range d.accommodations {
		c.accommodations[k] = v
	}
	for k, v := range d.places {
		c.places[k] = v
	}
	return c
}

// Faults lets tests make individual writes fail.
type Faults struct {
	Insert       error
	Update       error
	SetAvailable error
}

// Store implements repository.Store in memory.
type Store struct {
	txMu *sync.Mutex   // serializes transactions and top-level writes
	mu   *sync.RWMutex // guards d
	d    *data
	inTx bool

	Faults *Faults
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{txMu: &sync.Mutex{}, mu: &sync.RWMutex{}, d: newData(), Faults: &Faults{}}
}

func (s *Store) Reservations() repository.ReservationRepository { return reservations{s} }
func (s *Store) Tables() repository.TableRepository             { return tables{s} }
func (s *Store) Units() repository.UnitRepository               { return units{s} }
func (s *Store) Users() repository.UserRepository               { return users{s} }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.d.clone()
	s.mu.RUnlock()

	tx := &Store{txMu: s.txMu, mu: &sync.RWMutex{}, d: work, inTx: true, Faults: s.Faults}
	if err := fn(tx); err != nil {
		return err
	}
	s.mu.Lock()
	s.d = work
	s.mu.Unlock()
	return nil
}

// write runs a top-level mutation under the transaction lock.
func (s *Store) write(fn func(d *data) error) error {
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.d)
}

func (s *Store) read(fn func(d *data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.d)
}

// Seed helpers.

func (s *Store) AddUser(u model.User) {
	_ = s.write(func(d *data) error { d.users[u.ID] = u; return nil })
}

func (s *Store) AddPlace(p model.Place) {
	_ = s.write(func(d *data) error { d.places[p.ID] = p; return nil })
}

func (s *Store) AddRestaurant(r model.Restaurant) {
	_ = s.write(func(d *data) error { d.restaurants[r.ID] = r; return nil })
}

func (s *Store) AddAccommodation(a model.Accommodation) {
	_ = s.write(func(d *data) error { d.accommodations[a.ID] = a; return nil })
}

func (s *Store) AddTable(t model.RestaurantTable) {
	_ = s.write(func(d *data) error { d.tables[t.ID] = t; return nil })
}

func (s *Store) AddUnit(u model.AccomUnit) {
	_ = s.write(func(d *data) error { d.units[u.ID] = u; return nil })
}

func (s *Store) AddReservation(r model.Reservation) {
	_ = s.write(func(d *data) error { d.reservations[r.ID] = r; return nil })
}

// Table returns the stored table row for assertions.
func (s *Store) Table(id string) (model.RestaurantTable, bool) {
	var (
		t  model.RestaurantTable
		ok bool
	)
	s.read(func(d *data) { t, ok = d.tables[id] })
	return t, ok
}

// ReservationCount returns the number of stored reservations.
func (s *Store) ReservationCount() int {
	var n int
	s.read(func(d *data) { n = len(d.reservations) })
	return n
}

type reservations struct{ s *Store }

func (r reservations) Get(_ context.Context, id string) (model.Reservation, error) {
	var (
		res model.Reservation
		ok  bool
	)
	r.s.read(func(d *data) { res, ok = d.reservations[id] })
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return res, nil
}

// GetForUpdate needs no lock here since transactions are serialized.
func (r reservations) GetForUpdate(ctx context.Context, id string) (model.Reservation, error) {
	return r.Get(ctx, id)
}

func (r reservations) Insert(_ context.Context, res model.Reservation) error {
	return r.s.write(func(d *data) error {
		if r.s.Faults.Insert != nil {
			return r.s.Faults.Insert
		}
		if _, dup := d.reservations[res.ID]; dup {
			return repository.ErrConflict
		}
		d.reservations[res.ID] = res
		return nil
	})
}

func (r reservations) Update(_ context.Context, res model.Reservation) error {
	return r.s.write(func(d *data) error {
		if r.s.Faults.Update != nil {
			return r.s.Faults.Update
		}
		cur, ok := d.reservations[res.ID]
		if !ok {
			return repository.ErrNotFound
		}
		cur.StartDatetime = res.StartDatetime
		cur.EndDatetime = res.EndDatetime
		cur.GuestCount = res.GuestCount
		cur.Status = res.Status
		cur.SpecialRequests = res.SpecialRequests
		d.reservations[res.ID] = cur
		return nil
	})
}

func (r reservations) Delete(_ context.Context, id string) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.reservations[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.reservations, id)
		return nil
	})
}

func (r reservations) filter(keep func(model.Reservation) bool) []model.Reservation {
	out := make([]model.Reservation, 0)
	r.s.read(func(d *data) {
		for _, res := range d.reservations {
			if keep(res) {
				out = append(out, res)
			}
		}
	})
	return out
}

func (r reservations) ListOverlapping(_ context.Context, ref model.ItemRef, iv model.Interval, excludeID string) ([]model.Reservation, error) {
	out := r.filter(func(res model.Reservation) bool {
		return res.Item == ref && res.ID != excludeID && res.Status.Blocking() && res.Interval().Overlaps(iv)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDatetime.Before(out[j].StartDatetime) })
	return out, nil
}

func (r reservations) List(_ context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	out := r.filter(func(res model.Reservation) bool {
		if f.Status != nil && res.Status != *f.Status {
			return false
		}
		if f.From != nil && res.StartDatetime.Before(*f.From) {
			return false
		}
		if f.To != nil && res.EndDatetime.After(*f.To) {
			return false
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r reservations) ListByUser(_ context.Context, userID string) ([]model.Reservation, error) {
	out := r.filter(func(res model.Reservation) bool { return res.UserID == userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDatetime.Equal(out[j].StartDatetime) {
			return out[i].StartDatetime.Before(out[j].StartDatetime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r reservations) BlockedTableIDs(_ context.Context, restaurantID string, iv model.Interval) (map[string]bool, error) {
	ids := map[string]bool{}
	r.s.read(func(d *data) {
		for _, res := range d.reservations {
			if res.Item.Kind != model.KindRestaurantTable || !res.Status.Blocking() || !res.Interval().Overlaps(iv) {
				continue
			}
			if t, ok := d.tables[res.Item.ID]; ok && t.RestaurantID == restaurantID {
				ids[t.ID] = true
			}
		}
	})
	return ids, nil
}

func (r reservations) ConfirmedTableIDs(_ context.Context, restaurantID string, now time.Time) (map[string]bool, error) {
	ids := map[string]bool{}
	r.s.read(func(d *data) {
		for _, res := range d.reservations {
			if !res.IsConfirmedTableBooking() || !res.EndDatetime.After(now) {
				continue
			}
			t, ok := d.tables[res.Item.ID]
			if !ok || (restaurantID != "" && t.RestaurantID != restaurantID) {
				continue
			}
			ids[t.ID] = true
		}
	})
	return ids, nil
}

type tables struct{ s *Store }

func (t tables) Get(_ context.Context, id string) (model.RestaurantTable, error) {
	tbl, ok := t.s.Table(id)
	if !ok {
		return model.RestaurantTable{}, repository.ErrNotFound
	}
	return tbl, nil
}

func (t tables) Lock(_ context.Context, id string) error {
	if _, ok := t.s.Table(id); !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (t tables) SetAvailable(_ context.Context, id string, available bool) error {
	return t.s.write(func(d *data) error {
		if t.s.Faults.SetAvailable != nil {
			return t.s.Faults.SetAvailable
		}
		tbl, ok := d.tables[id]
		if !ok {
			return repository.ErrNotFound
		}
		tbl.IsAvailable = available
		d.tables[id] = tbl
		return nil
	})
}

func (t tables) selectTables(keep func(model.RestaurantTable) bool) []model.RestaurantTable {
	out := make([]model.RestaurantTable, 0)
	t.s.read(func(d *data) {
		for _, tbl := range d.tables {
			if keep(tbl) {
				out = append(out, tbl)
			}
		}
	})
	return out
}

func (t tables) ListBookable(_ context.Context, restaurantID string, minCapacity int) ([]model.RestaurantTable, error) {
	out := t.selectTables(func(tbl model.RestaurantTable) bool {
		return tbl.RestaurantID == restaurantID && tbl.IsAvailable &&
			tbl.SeatingCapacity != nil && *tbl.SeatingCapacity >= minCapacity
	})
	sort.Slice(out, func(i, j int) bool {
		if *out[i].SeatingCapacity != *out[j].SeatingCapacity {
			return *out[i].SeatingCapacity < *out[j].SeatingCapacity
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t tables) ListByRestaurant(_ context.Context, restaurantID string) ([]model.RestaurantTable, error) {
	out := t.selectTables(func(tbl model.RestaurantTable) bool {
		return restaurantID == "" || tbl.RestaurantID == restaurantID
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RestaurantID != out[j].RestaurantID {
			return out[i].RestaurantID < out[j].RestaurantID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t tables) GetDetail(_ context.Context, id string) (model.TableDetail, error) {
	var (
		detail model.TableDetail
		found  bool
	)
	t.s.read(func(d *data) {
		tbl, ok := d.tables[id]
		if !ok {
			return
		}
		rs, ok := d.restaurants[tbl.RestaurantID]
		if !ok {
			return
		}
		p, ok := d.places[rs.PlaceID]
		if !ok {
			return
		}
		detail = model.TableDetail{RestaurantTable: tbl, Restaurant: rs, Place: p}
		found = true
	})
	if !found {
		return model.TableDetail{}, repository.ErrNotFound
	}
	return detail, nil
}

type units struct{ s *Store }

func (u units) Get(_ context.Context, id string) (model.AccomUnit, error) {
	var (
		unit model.AccomUnit
		ok   bool
	)
	u.s.read(func(d *data) { unit, ok = d.units[id] })
	if !ok {
		return model.AccomUnit{}, repository.ErrNotFound
	}
	return unit, nil
}

func (u units) Lock(ctx context.Context, id string) error {
	_, err := u.Get(ctx, id)
	return err
}

func (u units) GetDetail(_ context.Context, id string) (model.UnitDetail, error) {
	var (
		detail model.UnitDetail
		found  bool
	)
	u.s.read(func(d *data) {
		unit, ok := d.units[id]
		if !ok {
			return
		}
		a, ok := d.accommodations[unit.AccommodationID]
		if !ok {
			return
		}
		p, ok := d.places[a.PlaceID]
		if !ok {
			return
		}
		detail = model.UnitDetail{AccomUnit: unit, Accommodation: a, Place: p}
		found = true
	})
	if !found {
		return model.UnitDetail{}, repository.ErrNotFound
	}
	return detail, nil
}

type users struct{ s *Store }

func (u users) Get(_ context.Context, id string) (model.User, error) {
	var (
		user model.User
		ok   bool
	)
	u.s.read(func(d *data) { user, ok = d.users[id] })
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}
