package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"school-inventory/internal/domain"
)

// In-memory repositories back the service when the DB is not reachable
// (local dev) and the unit tests. They keep the same invariants as the
// postgres implementations: clamped availability, atomic loan/return.

// --- equipment ---

type MemoryEquipmentRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Equipment
}

func NewMemoryEquipmentRepository() *MemoryEquipmentRepository {
	return &MemoryEquipmentRepository{items: map[string]*domain.Equipment{}}
}

var _ EquipmentRepository = (*MemoryEquipmentRepository)(nil)

func (r *MemoryEquipmentRepository) GetEquipment(_ context.Context, id string) (*domain.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryEquipmentRepository) ListEquipment(_ context.Context, filter EquipmentFilter) ([]*domain.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.Equipment{}
	for _, e := range r.items {
		if filter.State != "" && e.State != filter.State {
			continue
		}
		if filter.CategoryID != "" && e.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(e.Name), s) &&
				!strings.Contains(strings.ToLower(e.Brand), s) &&
				!strings.Contains(strings.ToLower(e.Model), s) {
				continue
			}
		}
		if filter.OnlyLendable && (e.State != domain.StateAvailable || e.AvailableQuantity <= 0) {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryEquipmentRepository) CreateEquipment(_ context.Context, e *domain.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *MemoryEquipmentRepository) UpdateEquipment(_ context.Context, e *domain.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	cp.UpdatedAt = time.Now().UTC()
	r.items[e.ID] = &cp
	return nil
}

func (r *MemoryEquipmentRepository) DeleteEquipment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryEquipmentRepository) AdjustAvailability(_ context.Context, id string, delta int) (*domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adjustLocked(id, delta)
}

func (r *MemoryEquipmentRepository) adjustLocked(id string, delta int) (*domain.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.AvailableQuantity = e.ClampAvailability(delta)
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	return &cp, nil
}

func (r *MemoryEquipmentRepository) ListLowStock(_ context.Context, threshold int, includeZero bool) ([]*domain.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.Equipment{}
	for _, e := range r.items {
		if e.AvailableQuantity >= threshold {
			continue
		}
		if !includeZero && e.AvailableQuantity == 0 {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AvailableQuantity != items[j].AvailableQuantity {
			return items[i].AvailableQuantity < items[j].AvailableQuantity
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// --- movements ---

// MemoryMovementRepository holds the equipment repo so loan/return can move
// stock under one lock, mirroring the postgres transaction.
type MemoryMovementRepository struct {
	mu        sync.Mutex
	items     map[string]*domain.Movement
	equipment *MemoryEquipmentRepository
}

func NewMemoryMovementRepository(equipment *MemoryEquipmentRepository) *MemoryMovementRepository {
	return &MemoryMovementRepository{
		items:     map[string]*domain.Movement{},
		equipment: equipment,
	}
}

var _ MovementRepository = (*MemoryMovementRepository)(nil)

func (r *MemoryMovementRepository) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryMovementRepository) ListMovements(_ context.Context, filter MovementFilter) ([]*domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []*domain.Movement{}
	for _, m := range r.items {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.EquipmentID != "" && m.EquipmentID != filter.EquipmentID {
			continue
		}
		if filter.TeacherID != "" && m.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(m.EquipmentName), s) &&
				!strings.Contains(strings.ToLower(m.TeacherName), s) {
				continue
			}
		}
		cp := *m
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryMovementRepository) CreateMovement(ctx context.Context, m *domain.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	equip, err := r.equipment.GetEquipment(ctx, m.EquipmentID)
	if err != nil {
		return err
	}
	if m.Type == domain.MovementAssignment && m.Quantity > equip.AvailableQuantity {
		return domain.ErrInsufficientStock
	}

	cp := *m
	cp.EquipmentName = equip.Name
	r.items[m.ID] = &cp

	delta := -m.Quantity
	if m.Type == domain.MovementReturn {
		delta = m.Quantity
	}
	if _, err := r.equipment.AdjustAvailability(ctx, m.EquipmentID, delta); err != nil {
		delete(r.items, m.ID)
		return err
	}
	return nil
}

func (r *MemoryMovementRepository) CompleteMovement(ctx context.Context, id string, returnDate time.Time) (*domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]
	if !ok || m.Status != domain.MovementActive || m.Type != domain.MovementAssignment {
		return nil, domain.ErrNotFound
	}

	m.Status = domain.MovementCompleted
	d := returnDate
	m.ActualReturnDate = &d

	if _, err := r.equipment.AdjustAvailability(ctx, m.EquipmentID, m.Quantity); err != nil {
		return nil, err
	}

	cp := *m
	return &cp, nil
}

func (r *MemoryMovementRepository) DeleteMovement(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// --- registry ---

type MemoryRegistryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.RegistryEntry
}

func NewMemoryRegistryRepository() *MemoryRegistryRepository {
	return &MemoryRegistryRepository{items: map[string]*domain.RegistryEntry{}}
}

var _ RegistryRepository = (*MemoryRegistryRepository)(nil)

func (r *MemoryRegistryRepository) GetRegistryEntry(_ context.Context, id string) (*domain.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryRegistryRepository) ListRegistry(_ context.Context, filter RegistryFilter) ([]*domain.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.RegistryEntry{}
	for _, e := range r.items {
		if filter.Reason != "" && e.Reason != filter.Reason {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.EquipmentID != "" && e.EquipmentID != filter.EquipmentID {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryRegistryRepository) CreateRegistryEntry(_ context.Context, e *domain.RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *MemoryRegistryRepository) UpdateRegistryStatus(_ context.Context, id string, status domain.RegistryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	return nil
}

func (r *MemoryRegistryRepository) DeleteRegistryEntry(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// --- history ---

type MemoryHistoryRepository struct {
	mu    sync.RWMutex
	items []*domain.HistoryEntry
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

var _ HistoryRepository = (*MemoryHistoryRepository)(nil)

func (r *MemoryHistoryRepository) AppendHistory(_ context.Context, e *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.items = append(r.items, &cp)
	return nil
}

func (r *MemoryHistoryRepository) ListHistory(_ context.Context, from, to time.Time) ([]*domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.HistoryEntry{}
	for _, e := range r.items {
		if !from.IsZero() && e.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.CreatedAt.After(to) {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MemoryHistoryRepository) ListHistoryForEquipment(_ context.Context, equipmentID string) ([]*domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.HistoryEntry{}
	for _, e := range r.items {
		if e.EquipmentID != equipmentID {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// --- notifications ---

type MemoryNotificationRepository struct {
	mu       sync.RWMutex
	inbox    []*domain.Notification
	settings map[string]*domain.NotificationSettings
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{settings: map[string]*domain.NotificationSettings{}}
}

var _ NotificationRepository = (*MemoryNotificationRepository)(nil)

func (r *MemoryNotificationRepository) InsertNotifications(_ context.Context, rows []*domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range rows {
		cp := *n
		r.inbox = append(r.inbox, &cp)
	}
	return nil
}

func (r *MemoryNotificationRepository) ListNotifications(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []*domain.Notification{}
	for _, n := range r.inbox {
		if n.UserID != userID {
			continue
		}
		cp := *n
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *MemoryNotificationRepository) UnreadCount(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.inbox {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.inbox {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.inbox {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) ListRecipients(_ context.Context, pref domain.NotificationPreference) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := []string{}
	for _, s := range r.settings {
		if s.Enabled(pref) {
			ids = append(ids, s.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryNotificationRepository) GetSettings(_ context.Context, userID string) (*domain.NotificationSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryNotificationRepository) UpsertSettings(_ context.Context, s *domain.NotificationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings[s.UserID] = &cp
	return nil
}

// --- lookup ---

type MemoryLookupRepository struct {
	mu         sync.RWMutex
	teachers   map[string]*domain.Teacher
	classrooms map[string]*domain.Classroom
	categories map[string]*domain.Category
}

func NewMemoryLookupRepository() *MemoryLookupRepository {
	return &MemoryLookupRepository{
		teachers:   map[string]*domain.Teacher{},
		classrooms: map[string]*domain.Classroom{},
		categories: map[string]*domain.Category{},
	}
}

var _ LookupRepository = (*MemoryLookupRepository)(nil)

func (r *MemoryLookupRepository) AddTeacher(t *domain.Teacher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.teachers[t.ID] = &cp
}

func (r *MemoryLookupRepository) AddClassroom(c *domain.Classroom) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.classrooms[c.ID] = &cp
}

func (r *MemoryLookupRepository) AddCategory(c *domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
}

func (r *MemoryLookupRepository) GetTeacher(_ context.Context, id string) (*domain.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teachers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryLookupRepository) ListTeachers(_ context.Context) ([]*domain.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []*domain.Teacher{}
	for _, t := range r.teachers {
		cp := *t
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FullName < items[j].FullName })
	return items, nil
}

func (r *MemoryLookupRepository) ListClassrooms(_ context.Context) ([]*domain.Classroom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []*domain.Classroom{}
	for _, c := range r.classrooms {
		cp := *c
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryLookupRepository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []*domain.Category{}
	for _, c := range r.categories {
		cp := *c
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
