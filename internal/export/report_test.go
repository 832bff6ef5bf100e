package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

func sampleSessions() []model.Session {
	start := time.Date(2025, time.June, 2, 18, 0, 0, 0, time.UTC)
	return []model.Session{
		{
			ID:              1,
			CustomerName:    "Ana",
			StartTime:       start,
			DurationMinutes: 90,
			PeopleCount:     2,
			Devices:         model.DeviceClaims{model.DevicePS: {1, 3}},
			Price:           200,
			PaidAmount:      200,
			PaidPeople:      2,
			Status:          model.SessionCompleted,
		},
		{
			ID:              2,
			CustomerName:    "Bo",
			StartTime:       start.Add(time.Hour),
			DurationMinutes: 60,
			PeopleCount:     1,
			Devices:         model.DeviceClaims{model.DeviceVR: {2}},
			Price:           180,
			PaidAmount:      100,
			PaidPeople:      0,
			Status:          model.SessionCompleted,
		},
	}
}

func TestBuildSessionsXLSX(t *testing.T) {
	data, err := BuildSessionsXLSX(sampleSessions(), time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	count, err := f.GetCellValue("summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	billed, err := f.GetCellValue("summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "380", billed)

	name, err := f.GetCellValue("sessions", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)

	devices, err := f.GetCellValue("sessions", "E2")
	require.NoError(t, err)
	assert.Equal(t, "ps[1,3]", devices)

	window, err := f.GetCellValue("sessions", "F2")
	require.NoError(t, err)
	assert.Equal(t, "normal_hour", window)
}

func TestBuildSessionsPDF(t *testing.T) {
	data, err := BuildSessionsPDF(sampleSessions(), time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output is a PDF document")
}

func TestFormatClaims(t *testing.T) {
	assert.Equal(t, "-", formatClaims(nil))
	assert.Equal(t, "-", formatClaims(model.DeviceClaims{model.DevicePS: {}}))
	assert.Equal(t, "pc[4] ps[1,2]", formatClaims(model.DeviceClaims{
		model.DevicePS: {1, 2},
		model.DevicePC: {4},
	}))
}
