package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"gorm.io/gorm"
)

// In-memory store fakes. Each records the scope filters and deletions it
// receives so tests can assert on what the services asked for.

type fakeClinicStore struct {
	clinics      map[uuid.UUID]*models.Clinic
	branchDeps   int64
	userDeps     int64
	count        int64
	countFilters []policy.Filter
	deleted      []uuid.UUID
}

func newFakeClinicStore(clinics ...*models.Clinic) *fakeClinicStore {
	f := &fakeClinicStore{clinics: make(map[uuid.UUID]*models.Clinic)}
	for _, c := range clinics {
		f.clinics[c.ID] = c
	}
	return f
}

func (f *fakeClinicStore) Create(_ context.Context, c *models.Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clinics[c.ID] = c
	return nil
}

func (f *fakeClinicStore) GetByID(_ context.Context, id uuid.UUID) (*models.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeClinicStore) List(_ context.Context, filter policy.Filter) ([]models.Clinic, error) {
	var out []models.Clinic
	for _, c := range f.clinics {
		if filter.Matches(policy.Target{ID: c.ID}) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClinicStore) Update(_ context.Context, c *models.Clinic) error {
	f.clinics[c.ID] = c
	return nil
}

func (f *fakeClinicStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.clinics, id)
	return nil
}

func (f *fakeClinicStore) CountDependents(_ context.Context, _ uuid.UUID) (int64, int64, error) {
	return f.branchDeps, f.userDeps, nil
}

func (f *fakeClinicStore) Count(_ context.Context, filter policy.Filter) (int64, error) {
	f.countFilters = append(f.countFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.count, nil
}

type fakeBranchStore struct {
	branches     map[uuid.UUID]*models.Branch
	userDeps     int64
	patientDeps  int64
	count        int64
	countFilters []policy.Filter
	deleted      []uuid.UUID
}

func newFakeBranchStore(branches ...*models.Branch) *fakeBranchStore {
	f := &fakeBranchStore{branches: make(map[uuid.UUID]*models.Branch)}
	for _, b := range branches {
		f.branches[b.ID] = b
	}
	return f
}

func (f *fakeBranchStore) Create(_ context.Context, b *models.Branch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchStore) GetByID(_ context.Context, id uuid.UUID) (*models.Branch, error) {
	b, ok := f.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f *fakeBranchStore) List(_ context.Context, filter policy.Filter) ([]models.Branch, error) {
	var out []models.Branch
	for _, b := range f.branches {
		if filter.Matches(policy.Target{ID: b.ID, ClinicID: b.ClinicID}) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBranchStore) Update(_ context.Context, b *models.Branch) error {
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.branches, id)
	return nil
}

func (f *fakeBranchStore) CountDependents(_ context.Context, _ uuid.UUID) (int64, int64, error) {
	return f.userDeps, f.patientDeps, nil
}

func (f *fakeBranchStore) Count(_ context.Context, filter policy.Filter) (int64, error) {
	f.countFilters = append(f.countFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.count, nil
}

type fakeUserStore struct {
	users        map[uuid.UUID]*models.User
	patientCount int64
	count        int64
	countFilters []policy.Filter
	deleted      []uuid.UUID
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) List(_ context.Context, _ policy.Filter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) CountPatients(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.patientCount, nil
}

func (f *fakeUserStore) Count(_ context.Context, filter policy.Filter) (int64, error) {
	f.countFilters = append(f.countFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.count, nil
}

type fakePatientStore struct {
	patients      map[uuid.UUID]*models.Patient
	count         int64
	recentCount   int64
	countFilters  []policy.Filter
	recentFilters []policy.Filter
	deleted       []uuid.UUID
}

func newFakePatientStore(patients ...*models.Patient) *fakePatientStore {
	f := &fakePatientStore{patients: make(map[uuid.UUID]*models.Patient)}
	for _, p := range patients {
		f.patients[p.ID] = p
	}
	return f
}

func (f *fakePatientStore) Create(_ context.Context, p *models.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientStore) GetByID(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePatientStore) List(_ context.Context, _ policy.Filter) ([]models.Patient, error) {
	var out []models.Patient
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePatientStore) Update(_ context.Context, p *models.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.patients, id)
	return nil
}

func (f *fakePatientStore) Count(_ context.Context, filter policy.Filter) (int64, error) {
	f.countFilters = append(f.countFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.count, nil
}

func (f *fakePatientStore) CountCreatedSince(_ context.Context, filter policy.Filter, _ time.Time) (int64, error) {
	f.recentFilters = append(f.recentFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.recentCount, nil
}

type fakeInvestigationStore struct {
	invs           map[uuid.UUID]*models.Investigation
	count          int64
	pendingCount   int64
	countFilters   []policy.Filter
	pendingFilters []policy.Filter
	deleted        []uuid.UUID
}

func newFakeInvestigationStore(invs ...*models.Investigation) *fakeInvestigationStore {
	f := &fakeInvestigationStore{invs: make(map[uuid.UUID]*models.Investigation)}
	for _, inv := range invs {
		f.invs[inv.ID] = inv
	}
	return f
}

func (f *fakeInvestigationStore) Create(_ context.Context, inv *models.Investigation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	f.invs[inv.ID] = inv
	return nil
}

func (f *fakeInvestigationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Investigation, error) {
	inv, ok := f.invs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (f *fakeInvestigationStore) ListByPatient(_ context.Context, patientID uuid.UUID, _ policy.Filter) ([]models.Investigation, error) {
	var out []models.Investigation
	for _, inv := range f.invs {
		if inv.PatientID == patientID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvestigationStore) Update(_ context.Context, inv *models.Investigation) error {
	f.invs[inv.ID] = inv
	return nil
}

func (f *fakeInvestigationStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.invs, id)
	return nil
}

func (f *fakeInvestigationStore) Count(_ context.Context, filter policy.Filter) (int64, error) {
	f.countFilters = append(f.countFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.count, nil
}

func (f *fakeInvestigationStore) CountPendingFollowUps(_ context.Context, filter policy.Filter, _ time.Time) (int64, error) {
	f.pendingFilters = append(f.pendingFilters, filter)
	if filter.DenyAll {
		return 0, nil
	}
	return f.pendingCount, nil
}

type fakeAuditStore struct {
	entries []*models.AuditLog
}

func (f *fakeAuditStore) Create(_ context.Context, log *models.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditStore) GetByClinicID(_ context.Context, clinicID uuid.UUID, _, _ int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.ClinicID != nil && *e.ClinicID == clinicID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeAuditStore) GetByResourceID(_ context.Context, resourceID string) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.ResourceID == resourceID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Caller fixtures shared across the service tests.

func superadminCaller() policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleSuperAdmin}
}

func clinicAdminCaller(clinicID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleClinicAdmin, ClinicID: clinicID}
}

func branchAdminCaller(clinicID, branchID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleBranchAdmin, ClinicID: clinicID, BranchID: branchID}
}

func doctorCaller(clinicID, branchID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleDoctor, ClinicID: clinicID, BranchID: branchID}
}
