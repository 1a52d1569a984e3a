package history

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-api/internal/model"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
	"github.com/clinicdesk/clinic-api/pkg/logger"
)

type fakeHistoryRepo struct {
	rows map[uuid.UUID]*model.ServiceHistory // keyed by booking id
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{rows: make(map[uuid.UUID]*model.ServiceHistory)}
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *model.ServiceHistory) error {
	cp := *history
	r.rows[history.BookingID] = &cp
	return nil
}

func (r *fakeHistoryRepo) UpdateByBooking(_ context.Context, history *model.ServiceHistory) error {
	existing, ok := r.rows[history.BookingID]
	if !ok {
		return pkgerrors.NotFound("history row", nil)
	}
	cp := *history
	cp.ID = existing.ID
	cp.CreatedAt = existing.CreatedAt
	r.rows[history.BookingID] = &cp
	return nil
}

func (r *fakeHistoryRepo) Get(_ context.Context, id uuid.UUID) (*model.ServiceHistory, error) {
	for _, row := range r.rows {
		if row.ID == id {
			cp := *row
			return &cp, nil
		}
	}
	return nil, pkgerrors.NotFound("history row", nil)
}

func (r *fakeHistoryRepo) List(_ context.Context) ([]*model.ServiceHistory, error) {
	var out []*model.ServiceHistory
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.ServiceHistory, error) {
	var out []*model.ServiceHistory
	for _, row := range r.rows {
		if row.PatientID != nil && *row.PatientID == patientID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func detailFixture(t *testing.T) *model.BookingDetail {
	t.Helper()
	date, err := model.ParseDate("2026-09-01")
	require.NoError(t, err)
	start, err := model.ParseClock("10:00")
	require.NoError(t, err)
	end, err := model.ParseClock("11:00")
	require.NoError(t, err)

	b := model.Booking{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		ServiceID: uuid.New(),
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	b.ID = uuid.New()
	return &model.BookingDetail{Booking: b}
}

func TestHandleBookingCreated(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, logger.Nop())
	detail := detailFixture(t)

	err := svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingCreated, New: detail})
	require.NoError(t, err)

	row, ok := repo.rows[detail.ID]
	require.True(t, ok, "created booking must get a history row keyed by booking id")
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.NotEqual(t, detail.ID, row.ID, "history row has its own identity")
	require.NotNil(t, row.PatientID)
	assert.Equal(t, detail.PatientID, *row.PatientID)
	assert.True(t, row.Date.Equal(detail.Date))
}

func TestHandleBookingUpdated(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, logger.Nop())
	detail := detailFixture(t)

	require.NoError(t, svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingCreated, New: detail}))
	originalRowID := repo.rows[detail.ID].ID

	moved := *detail
	start, _ := model.ParseClock("14:00")
	end, _ := model.ParseClock("15:00")
	moved.StartTime = start
	moved.EndTime = end
	moved.Confirmed = true

	err := svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingUpdated, Old: detail, New: &moved})
	require.NoError(t, err)

	require.Len(t, repo.rows, 1, "updates overwrite the row, never add a second one")
	row := repo.rows[detail.ID]
	assert.Equal(t, originalRowID, row.ID)
	assert.True(t, row.StartTime.Equal(start))
	assert.True(t, row.Confirmed)
}

func TestHandleBookingUpdatedMissingRow(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, logger.Nop())
	detail := detailFixture(t)

	err := svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingUpdated, Old: detail, New: detail})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrIntegration, pkgerrors.Code(err))
	assert.Contains(t, err.Error(), detail.ID.String())
}

func TestHandleBookingDeleted(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, logger.Nop())
	detail := detailFixture(t)

	require.NoError(t, svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingCreated, New: detail}))

	err := svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingDeleted, Old: detail})
	require.NoError(t, err)

	// the trail outlives the booking
	assert.Len(t, repo.rows, 1)
}

func TestListForPatient(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, logger.Nop())

	first := detailFixture(t)
	second := detailFixture(t)
	require.NoError(t, svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingCreated, New: first}))
	require.NoError(t, svc.HandleBookingEvent(context.Background(), &model.BookingEvent{Type: model.BookingCreated, New: second}))

	rows, err := svc.ListForPatient(context.Background(), first.PatientID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].BookingID)
}
