package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/model"
)

func TestID(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int64
		expectErr bool
	}{
		{name: "Plain", raw: "42", expected: 42},
		{name: "Surrounding spaces", raw: " 7 ", expected: 7},
		{name: "Zero", raw: "0", expectErr: true},
		{name: "Negative", raw: "-1", expectErr: true},
		{name: "Letters", raw: "abc", expectErr: true},
		{name: "Float", raw: "1.5", expectErr: true},
		{name: "Overflow", raw: "99999999999999999999", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ID("id", tc.raw)
			if tc.expectErr {
				var verr *maintenance.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "id", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestOptionalID(t *testing.T) {
	id, err := OptionalID("machineId", "")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = OptionalID("machineId", "3")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(3), *id)

	_, err = OptionalID("machineId", "x")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	d, err := Date("scheduledDate", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2026, 10, 16), d)

	for _, raw := range []string{"16/10/2026", "2026-13-01", "2026-02-30", "", "2026-10-16T00:00:00Z"} {
		_, err := Date("scheduledDate", raw)
		assert.Error(t, err, raw)
	}

	empty := " "
	opt, err := OptionalDate("lastMaintenanceDate", &empty)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestMachineStatus(t *testing.T) {
	s, err := MachineStatus("status", "maintenance")
	require.NoError(t, err)
	assert.Equal(t, model.MachineMaintenance, s)

	_, err = MachineStatus("status", "Broken")
	assert.Error(t, err)
}

func TestRecordQuery(t *testing.T) {
	pending := model.RecordPending
	completed := model.RecordCompleted
	machineID := int64(5)

	testCases := []struct {
		name       string
		machineID  string
		status     string
		rng        string
		expected   maintenance.RecordQuery
		errorField string
	}{
		{name: "Empty", expected: maintenance.RecordQuery{}},
		{name: "Machine only", machineID: "5", expected: maintenance.RecordQuery{MachineID: &machineID}},
		{name: "Pending", status: "Pending", expected: maintenance.RecordQuery{Status: &pending}},
		{name: "Completed lower case", status: "completed", expected: maintenance.RecordQuery{Status: &completed}},
		{name: "Overdue status alias", status: "Overdue", expected: maintenance.RecordQuery{Range: maintenance.RangeOverdue}},
		{name: "Upcoming range with machine", machineID: "5", rng: "upcoming", expected: maintenance.RecordQuery{MachineID: &machineID, Range: maintenance.RangeUpcoming}},
		{name: "Overdue range upper case", rng: "OVERDUE", expected: maintenance.RecordQuery{Range: maintenance.RangeOverdue}},
		{name: "Unknown range", rng: "later", errorField: "range"},
		{name: "Unknown status", status: "Done", errorField: "status"},
		{name: "Overdue status with upcoming range", status: "Overdue", rng: "upcoming", errorField: "status"},
		{name: "Bad machine id", machineID: "five", errorField: "machineId"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := RecordQuery(tc.machineID, tc.status, tc.rng)
			if tc.errorField != "" {
				var verr *maintenance.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.errorField, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, q)
		})
	}
}
