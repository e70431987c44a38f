package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicDeleteBlockedWhileDependentsExist(t *testing.T) {
	clinic := &models.Clinic{ID: uuid.New(), Name: "City Clinic"}
	ctx := context.Background()
	caller := superadminCaller()

	cases := []struct {
		name     string
		branches int64
		users    int64
	}{
		{"branches attached", 2, 0},
		{"users attached", 0, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeClinicStore(clinic)
			store.branchDeps = tc.branches
			store.userDeps = tc.users
			svc := services.NewClinicService(store, &fakeAuditStore{})

			err := svc.Delete(ctx, caller, clinic.ID)

			var conflict *services.ErrConflict
			require.ErrorAs(t, err, &conflict)
			assert.Empty(t, store.deleted, "a blocked delete must not reach the store")
		})
	}

	// With no dependents left the delete goes through.
	store := newFakeClinicStore(clinic)
	svc := services.NewClinicService(store, &fakeAuditStore{})
	require.NoError(t, svc.Delete(ctx, caller, clinic.ID))
	assert.Equal(t, []uuid.UUID{clinic.ID}, store.deleted)
}

func TestClinicMissingRowReportedBeforeAuthorization(t *testing.T) {
	// The caller would be denied either way; a row that does not exist must
	// still surface as not-found, never as a permission error.
	ctx := context.Background()
	caller := doctorCaller(uuid.New(), uuid.New())
	svc := services.NewClinicService(newFakeClinicStore(), &fakeAuditStore{})

	_, err := svc.Get(ctx, caller, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.Update(ctx, caller, uuid.New(), &models.ClinicRequest{Name: "X"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = svc.Delete(ctx, caller, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestClinicExistingRowDeniedAfterResolution(t *testing.T) {
	clinic := &models.Clinic{ID: uuid.New(), Name: "City Clinic"}
	ctx := context.Background()
	svc := services.NewClinicService(newFakeClinicStore(clinic), &fakeAuditStore{})

	_, err := svc.Get(ctx, doctorCaller(uuid.New(), uuid.New()), clinic.ID)

	var deniedErr *services.ErrDenied
	require.ErrorAs(t, err, &deniedErr)
	assert.Equal(t, policy.ReasonForbidden, deniedErr.Reason)
	assert.False(t, errors.Is(err, services.ErrNotFound))
}

func TestDeniedMutationRecordsAuditEntryWithClientIP(t *testing.T) {
	clinic := &models.Clinic{ID: uuid.New(), Name: "City Clinic"}
	audit := &fakeAuditStore{}
	svc := services.NewClinicService(newFakeClinicStore(clinic), audit)

	caller := clinicAdminCaller(clinic.ID)
	ctx := services.WithClientIP(context.Background(), "203.0.113.9")

	err := svc.Delete(ctx, caller, clinic.ID)

	var deniedErr *services.ErrDenied
	require.ErrorAs(t, err, &deniedErr)
	require.Len(t, audit.entries, 1)

	entry := audit.entries[0]
	assert.Equal(t, "clinic.delete", entry.Action)
	assert.Equal(t, "denied", entry.Status)
	assert.Equal(t, string(policy.ReasonForbidden), entry.DenyReason)
	assert.Equal(t, "203.0.113.9", entry.IPAddress)
	assert.Equal(t, caller.UserID, entry.UserID)
}
