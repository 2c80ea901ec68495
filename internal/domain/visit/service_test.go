package visit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/storage"
	ptesting "gatepass-server-go/internal/platform/testing"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func testService(t *testing.T) (*Service, Repository) {
	t.Helper()

	db, err := storage.OpenMemory()
	require.NoError(t, err)
	repo := storage.NewVisitRepository(db)

	svc, err := NewService(repo, nil, ptesting.SetupTestLogger(t))
	require.NoError(t, err)
	return svc, repo
}

func validSubmission() Submission {
	return Submission{
		Name:           "Asha Verma",
		Mobile:         "9876543210",
		Address:        "12 Park Lane",
		IDProof:        "DL-4411",
		PersonToMeet:   "R. Iyer",
		Designation:    "Consultant",
		Department:     "Engineering",
		MeetingPurpose: "Design review",
		Photo:          "data:image/png;base64," + tinyPNG,
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	before := time.Now().UTC()
	record, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.NotEmpty(t, record.BadgeID)
	assert.Equal(t, "Asha Verma", record.Name)
	assert.Equal(t, "Engineering", record.Department)
	// no uploader configured: the data URL is stored as-is
	assert.Equal(t, "data:image/png;base64,"+tinyPNG, record.PhotoURL)
	assert.False(t, record.CreatedAt.Before(before.Truncate(time.Second)))

	var payload models.QRPayload
	require.NoError(t, json.Unmarshal(record.QRData, &payload))
	assert.Equal(t, "Asha Verma", payload.Name)
	assert.Equal(t, "9876543210", payload.Mobile)
	assert.Equal(t, "Design review", payload.MeetingPurpose)
}

func TestService_Create_UniqueBadges(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)
	second, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)

	assert.NotEqual(t, first.BadgeID, second.BadgeID)
}

func TestService_Create_MissingFields(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Submission)
	}{
		{"missing name", func(s *Submission) { s.Name = "" }},
		{"whitespace name", func(s *Submission) { s.Name = "   " }},
		{"missing mobile", func(s *Submission) { s.Mobile = "" }},
		{"missing address", func(s *Submission) { s.Address = "" }},
		{"missing id proof", func(s *Submission) { s.IDProof = "" }},
		{"missing person to meet", func(s *Submission) { s.PersonToMeet = "" }},
		{"missing purpose", func(s *Submission) { s.MeetingPurpose = "" }},
		{"missing photo", func(s *Submission) { s.Photo = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			_, err := svc.Create(ctx, sub)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindDomain))
		})
	}
}

func TestService_Create_InvalidPhoto(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	sub := validSubmission()
	sub.Photo = "https://example.com/photo.png"
	_, err := svc.Create(ctx, sub)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDomain))
}

func TestService_ListForDay(t *testing.T) {
	svc, repo := testService(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	seed := []models.VisitRecord{
		{BadgeID: "b1", Name: "Early", Mobile: "1", Address: "a", IDProof: "p",
			PersonToMeet: "m", Department: "Engineering", MeetingPurpose: "x",
			CreatedAt: day.Add(9 * time.Minute)},
		{BadgeID: "b2", Name: "Late", Mobile: "2", Address: "a", IDProof: "p",
			PersonToMeet: "m", Department: "Finance", MeetingPurpose: "x",
			CreatedAt: day.Add(23*time.Hour + 59*time.Minute)},
		{BadgeID: "b3", Name: "NextDay", Mobile: "3", Address: "a", IDProof: "p",
			PersonToMeet: "m", Department: "Engineering", MeetingPurpose: "x",
			CreatedAt: day.Add(24*time.Hour + time.Minute)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	all, err := svc.ListForDay(ctx, "2026-03-14", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Early", all[0].Name)
	assert.Equal(t, "Late", all[1].Name)

	// the sentinel behaves like no filter
	sentinel, err := svc.ListForDay(ctx, "2026-03-14", DepartmentAll)
	require.NoError(t, err)
	assert.Len(t, sentinel, 2)

	eng, err := svc.ListForDay(ctx, "2026-03-14", "Engineering")
	require.NoError(t, err)
	require.Len(t, eng, 1)
	assert.Equal(t, "Early", eng[0].Name)

	empty, err := svc.ListForDay(ctx, "2026-03-15", "Finance")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}

func TestService_ListForDay_BadDate(t *testing.T) {
	svc, _ := testService(t)

	for _, day := range []string{"", "14-03-2026", "2026/03/14", "yesterday"} {
		_, err := svc.ListForDay(context.Background(), day, "")
		require.Error(t, err, "day=%q", day)
		assert.True(t, errors.IsKind(err, errors.KindDomain))
	}
}

func TestService_QRPNG(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)

	png, err := svc.QRPNG(ctx, record.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 0x50, 0x4E, 0x47}))

	_, err = svc.QRPNG(ctx, record.ID+100, 256)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}
