package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/globalenglish-api/internal/models"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	appErrors "github.com/noah-isme/globalenglish-api/pkg/errors"
)

func day(value string) time.Time {
	d, err := scheduling.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(value string) *time.Time {
	d := day(value)
	return &d
}

// memoryStore is an in-memory stand-in for the assignment tables.
type memoryStore struct {
	classrooms map[string]models.ClassroomProfile
	slots      map[string]models.ScheduleSlot
	schedules  []models.ClassroomScheduleAssignment
	tutors     []models.TutorAssignment
	students   []models.StudentAssignment
	createErr  error
	seq        int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		classrooms: map[string]models.ClassroomProfile{},
		slots:      map[string]models.ScheduleSlot{},
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) addClassroom(id string, grade int, shift string) {
	m.classrooms[id] = models.ClassroomProfile{ID: id, Name: id, Grade: grade, InstitutionID: "inst-1", InstitutionName: "IE Central", Shift: shift}
}

func (m *memoryStore) addSlot(id, weekday, start, end string, equivalent *int) {
	m.slots[id] = models.ScheduleSlot{ID: id, Weekday: weekday, StartTime: start, EndTime: end, EquivalentMinutes: equivalent}
}

func (m *memoryStore) placeSlot(classroomID, slotID, from string, to *time.Time) string {
	id := m.nextID("cs")
	m.schedules = append(m.schedules, models.ClassroomScheduleAssignment{ID: id, ClassroomID: classroomID, SlotID: slotID, ValidFrom: day(from), ValidTo: to})
	return id
}

func (m *memoryStore) placeTutor(classroomID, tutorID, from string, to *time.Time) string {
	id := m.nextID("ta")
	m.tutors = append(m.tutors, models.TutorAssignment{ID: id, ClassroomID: classroomID, TutorID: tutorID, ValidFrom: day(from), ValidTo: to})
	return id
}

func (m *memoryStore) placeStudent(classroomID, studentID, from string, to *time.Time) string {
	id := m.nextID("sa")
	m.students = append(m.students, models.StudentAssignment{ID: id, ClassroomID: classroomID, StudentID: studentID, ValidFrom: day(from), ValidTo: to})
	return id
}

func (m *memoryStore) snapshot() *memoryStore {
	cp := *m
	cp.schedules = append([]models.ClassroomScheduleAssignment(nil), m.schedules...)
	cp.tutors = append([]models.TutorAssignment(nil), m.tutors...)
	cp.students = append([]models.StudentAssignment(nil), m.students...)
	return &cp
}

func (m *memoryStore) restore(from *memoryStore) {
	m.schedules = from.schedules
	m.tutors = from.tutors
	m.students = from.students
	m.seq = from.seq
}

func (m *memoryStore) openStudents(studentID string) []models.StudentAssignment {
	var out []models.StudentAssignment
	for _, a := range m.students {
		if a.StudentID == studentID && a.ValidTo == nil {
			out = append(out, a)
		}
	}
	return out
}

func (m *memoryStore) FindProfile(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ClassroomProfile, error) {
	profile, ok := m.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &profile, nil
}

func (m *memoryStore) classroomSlots(classroomID string, keep func(models.ClassroomScheduleAssignment) bool) []models.ClassroomSlot {
	var out []models.ClassroomSlot
	for _, a := range m.schedules {
		if a.ClassroomID != classroomID || !keep(a) {
			continue
		}
		slot := m.slots[a.SlotID]
		out = append(out, models.ClassroomSlot{
			AssignmentID:      a.ID,
			ClassroomID:       a.ClassroomID,
			SlotID:            a.SlotID,
			Weekday:           slot.Weekday,
			StartTime:         slot.StartTime,
			EndTime:           slot.EndTime,
			EquivalentMinutes: slot.EquivalentMinutes,
			ValidFrom:         a.ValidFrom,
			ValidTo:           a.ValidTo,
		})
	}
	return out
}

func stillValid(to *time.Time, date time.Time) bool {
	return to == nil || !to.Before(date)
}

type fakeSlots struct{ *memoryStore }

func (f fakeSlots) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleSlot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

type fakeSchedules struct{ *memoryStore }

func (f fakeSchedules) ListSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.ClassroomSlot, error) {
	return f.classroomSlots(classroomID, func(a models.ClassroomScheduleAssignment) bool { return stillValid(a.ValidTo, date) }), nil
}

func (f fakeSchedules) ListHistory(ctx context.Context, classroomID string) ([]models.ClassroomSlot, error) {
	return f.classroomSlots(classroomID, func(models.ClassroomScheduleAssignment) bool { return true }), nil
}

func (f fakeSchedules) Create(ctx context.Context, exec sqlx.ExtContext, a *models.ClassroomScheduleAssignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = f.nextID("cs")
	f.schedules = append(f.schedules, *a)
	return nil
}

func (f fakeSchedules) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	for _, a := range f.schedules {
		if a.ID == id {
			return &models.IntervalRow{ID: a.ID, ValidFrom: a.ValidFrom, ValidTo: a.ValidTo}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeSchedules) CloseInterval(ctx context.Context, exec sqlx.ExtContext, p models.IntervalClose) error {
	for i := range f.schedules {
		if f.schedules[i].ID == p.ID && f.schedules[i].ValidTo == nil {
			end := p.End
			f.schedules[i].ValidTo = &end
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeTutors struct{ *memoryStore }

func (f fakeTutors) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TutorAssignment, error) {
	for _, a := range f.tutors {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeTutors) ListForClassroomSince(ctx context.Context, exec sqlx.ExtContext, classroomID string, date time.Time) ([]models.TutorAssignment, error) {
	var out []models.TutorAssignment
	for _, a := range f.tutors {
		if a.ClassroomID == classroomID && stillValid(a.ValidTo, date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeTutors) ListForTutorSince(ctx context.Context, exec sqlx.ExtContext, tutorID string, date time.Time) ([]models.TutorAssignment, error) {
	var out []models.TutorAssignment
	for _, a := range f.tutors {
		if a.TutorID == tutorID && stillValid(a.ValidTo, date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeTutors) ListHistory(ctx context.Context, classroomID string) ([]models.TutorAssignment, error) {
	var out []models.TutorAssignment
	for _, a := range f.tutors {
		if a.ClassroomID == classroomID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeTutors) Timetable(ctx context.Context, tutorID string, date time.Time) ([]models.TimetableEntry, error) {
	var out []models.TimetableEntry
	for _, a := range f.tutors {
		if a.TutorID != tutorID || !(scheduling.Interval{From: a.ValidFrom, To: a.ValidTo}).Covers(date) {
			continue
		}
		rows := f.classroomSlots(a.ClassroomID, func(s models.ClassroomScheduleAssignment) bool {
			return (scheduling.Interval{From: s.ValidFrom, To: s.ValidTo}).Covers(date)
		})
		for _, row := range rows {
			out = append(out, models.TimetableEntry{
				ClassroomID:       row.ClassroomID,
				ClassroomName:     f.classrooms[row.ClassroomID].Name,
				SlotID:            row.SlotID,
				Weekday:           row.Weekday,
				StartTime:         row.StartTime,
				EndTime:           row.EndTime,
				EquivalentMinutes: scheduling.EquivalentOrDefault(row.EquivalentMinutes),
			})
		}
	}
	return out, nil
}

func (f fakeTutors) Create(ctx context.Context, exec sqlx.ExtContext, a *models.TutorAssignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = f.nextID("ta")
	f.tutors = append(f.tutors, *a)
	return nil
}

func (f fakeTutors) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	for _, a := range f.tutors {
		if a.ID == id {
			return &models.IntervalRow{ID: a.ID, ValidFrom: a.ValidFrom, ValidTo: a.ValidTo}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeTutors) CloseInterval(ctx context.Context, exec sqlx.ExtContext, p models.IntervalClose) error {
	for i := range f.tutors {
		if f.tutors[i].ID == p.ID && f.tutors[i].ValidTo == nil {
			end := p.End
			f.tutors[i].ValidTo = &end
			if p.Reason != nil {
				f.tutors[i].ChangeReason = p.Reason
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeStudents struct{ *memoryStore }

func (f fakeStudents) ListForStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) ([]models.StudentAssignment, error) {
	var out []models.StudentAssignment
	for _, a := range f.students {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeStudents) ListByClassroomOn(ctx context.Context, classroomID string, date time.Time) ([]models.ClassroomStudent, error) {
	var out []models.ClassroomStudent
	for _, a := range f.students {
		if a.ClassroomID == classroomID && (scheduling.Interval{From: a.ValidFrom, To: a.ValidTo}).Covers(date) {
			out = append(out, models.ClassroomStudent{AssignmentID: a.ID, StudentID: a.StudentID, ValidFrom: a.ValidFrom, ValidTo: a.ValidTo})
		}
	}
	return out, nil
}

func (f fakeStudents) Create(ctx context.Context, exec sqlx.ExtContext, a *models.StudentAssignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = f.nextID("sa")
	f.students = append(f.students, *a)
	return nil
}

func (f fakeStudents) LockInterval(ctx context.Context, exec sqlx.ExtContext, id string) (*models.IntervalRow, error) {
	for _, a := range f.students {
		if a.ID == id {
			return &models.IntervalRow{ID: a.ID, ValidFrom: a.ValidFrom, ValidTo: a.ValidTo}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeStudents) CloseInterval(ctx context.Context, exec sqlx.ExtContext, p models.IntervalClose) error {
	for i := range f.students {
		if f.students[i].ID == p.ID && f.students[i].ValidTo == nil {
			end := p.End
			f.students[i].ValidTo = &end
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakeUnitOfWork discards every write made by fn when it fails.
type fakeUnitOfWork struct {
	store *memoryStore
	keys  [][]string
}

func (u *fakeUnitOfWork) Run(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) error {
	u.keys = append(u.keys, keys)
	saved := u.store.snapshot()
	if err := fn(nil); err != nil {
		u.store.restore(saved)
		return err
	}
	return nil
}

// fakeCache is an in-memory CacheRepository.
type fakeCache struct {
	entries     map[string]interface{}
	invalidated []string
	getErr      error
	setErr      error
	deleteErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]interface{}{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if tt, ok := value.(*models.TutorTimetable); ok {
		*(dest.(*models.TutorTimetable)) = *tt
	}
	return nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	if c.deleteErr != nil {
		return c.deleteErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// engine bundles every service over one memory store.
type engine struct {
	store     *memoryStore
	uow       *fakeUnitOfWork
	cache     *fakeCache
	checker   *ConflictChecker
	lifecycle *IntervalLifecycle
	schedules *ClassroomScheduleService
	tutors    *TutorAssignmentService
	students  *StudentAssignmentService
}

func newEngine(t *testing.T, today string) *engine {
	t.Helper()
	store := newMemoryStore()
	uow := &fakeUnitOfWork{store: store}
	cache := newFakeCache()
	timetables := NewTimetableCache(cache, nil, time.Minute, nil, true)
	checker := NewConflictChecker(store, fakeSlots{store}, fakeSchedules{store}, fakeTutors{store}, fakeStudents{store}, scheduling.NewPolicyTable(false))
	lifecycle := NewIntervalLifecycle(uow, fakeSchedules{store}, fakeTutors{store}, fakeStudents{store}, scheduling.FixedClock{Date: day(today)}, nil)
	return &engine{
		store:     store,
		uow:       uow,
		cache:     cache,
		checker:   checker,
		lifecycle: lifecycle,
		schedules: NewClassroomScheduleService(fakeSchedules{store}, store, checker, lifecycle, timetables, nil, nil, nil),
		tutors:    NewTutorAssignmentService(fakeTutors{store}, store, checker, lifecycle, timetables, nil, nil, nil),
		students:  NewStudentAssignmentService(fakeStudents{store}, store, checker, lifecycle, nil, nil, nil),
	}
}

func intPtr(v int) *int { return &v }
