package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchDeleteBlockedWhileDependentsExist(t *testing.T) {
	clinic := &models.Clinic{ID: uuid.New(), Name: "City Clinic"}
	branch := &models.Branch{ID: uuid.New(), ClinicID: clinic.ID, Name: "Downtown"}
	ctx := context.Background()
	caller := clinicAdminCaller(clinic.ID)

	cases := []struct {
		name     string
		users    int64
		patients int64
	}{
		{"users attached", 1, 0},
		{"patients attached", 0, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeBranchStore(branch)
			store.userDeps = tc.users
			store.patientDeps = tc.patients
			svc := services.NewBranchService(store, newFakeClinicStore(clinic), &fakeAuditStore{})

			err := svc.Delete(ctx, caller, branch.ID)

			var conflict *services.ErrConflict
			require.ErrorAs(t, err, &conflict)
			assert.Empty(t, store.deleted, "a blocked delete must not reach the store")
		})
	}

	store := newFakeBranchStore(branch)
	svc := services.NewBranchService(store, newFakeClinicStore(clinic), &fakeAuditStore{})
	require.NoError(t, svc.Delete(ctx, caller, branch.ID))
	assert.Equal(t, []uuid.UUID{branch.ID}, store.deleted)
}

func TestBranchMissingRowReportedBeforeAuthorization(t *testing.T) {
	ctx := context.Background()
	caller := doctorCaller(uuid.New(), uuid.New())
	svc := services.NewBranchService(newFakeBranchStore(), newFakeClinicStore(), &fakeAuditStore{})

	_, err := svc.Get(ctx, caller, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = svc.Delete(ctx, caller, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBranchCreateRequiresExistingClinic(t *testing.T) {
	clinicID := uuid.New()
	ctx := context.Background()
	svc := services.NewBranchService(newFakeBranchStore(), newFakeClinicStore(), &fakeAuditStore{})

	_, err := svc.Create(ctx, clinicAdminCaller(clinicID), &models.BranchRequest{
		ClinicID: clinicID,
		Name:     "Downtown",
		Address:  "1 Main St",
	})

	var conflict *services.ErrConflict
	require.ErrorAs(t, err, &conflict)
}
