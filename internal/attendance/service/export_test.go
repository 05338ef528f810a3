package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
	"github.com/rollcall/rollcall-backend/pkg/config"
	"github.com/rollcall/rollcall-backend/pkg/logger"
	"github.com/rollcall/rollcall-backend/pkg/testutil"
)

func TestExporter_Export(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, logger.Nop())
	e.now = func() time.Time { return time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC) }

	f := testutil.NewFixtureFactory()
	path, err := e.Export(ViewDaily, DailyTable([]domain.AttendanceRecord{
		f.Record("E1", "02-Jan-2024", domain.StatusPresent),
		f.Record("E1", "03-Jan-2024", domain.StatusHalfDay, testutil.WithHours(4.5)),
	}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "daily_status_01-Feb-2024.xlsx"), path)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	rows, err := wb.GetRows("Daily Status")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Status", rows[0][10])
	assert.Equal(t, "Present", rows[1][10])
	assert.Equal(t, "HalfDay", rows[2][10])
	assert.Equal(t, "4.5", rows[2][6])
}

func TestLedgerTables(t *testing.T) {
	ctx := testutil.AdminContext(t)
	l, _ := newTestLedger(t, testutil.AlwaysConfirm(), config.MatchFolded)
	_, err := l.Initialize(ctx, mixedRecords())
	require.NoError(t, err)
	_, err = l.AcceptAll(ctx, domain.CategoryPresent)
	require.NoError(t, err)

	tables := LedgerTables(l)
	require.Len(t, tables, len(domain.AllCategories)+1)

	modules := tables[0]
	assert.Equal(t, "Modules", modules.Sheet)
	assert.Equal(t, []any{"Present", 1, 1, 0, false}, modules.Rows[1])

	present := tables[2]
	assert.Equal(t, "Present", present.Sheet)
	require.Len(t, present.Rows, 1)
	row := present.Rows[0]
	assert.Equal(t, "Yes", row[11])
	assert.Equal(t, "tester", row[12])
	assert.Equal(t, fixedNow.Format(time.RFC3339), row[13])
}

func TestAuditAndExcessTables(t *testing.T) {
	audit := AuditTable(CategorizeAudit([]domain.ReconciliationRecord{
		auditRecord("E1", "02-Jan-2024", 8, 30, ""),
		auditRecord("E1", "03-Jan-2024", 0, 0, DeviationMissingOut),
	}))
	require.Len(t, audit.Rows, 2)
	assert.Equal(t, string(BucketMissingPunch), audit.Rows[0][0], "buckets are written in priority order")
	assert.Equal(t, string(BucketLateEarly), audit.Rows[1][0])

	f := testutil.NewFixtureFactory()
	buckets, err := ClassifyExcess(context.Background(), []domain.AttendanceRecord{
		f.Record("E1", "02-Jan-2024", domain.StatusPresent, withPunches("09:00", "19:30")),
	}, newTestShifts(t))
	require.NoError(t, err)

	tables := ExcessTables(buckets)
	require.Len(t, tables, 2)
	require.Len(t, tables[0].Rows, 1)
	assert.Equal(t, string(Excess1To2h), tables[0].Rows[0][0])
	assert.Equal(t, 1.5, tables[0].Rows[0][7])
	assert.Empty(t, tables[1].Rows)
}

func TestMonthlyTable(t *testing.T) {
	in := monthlyFixture()
	data, err := BuildMonthly(context.Background(), in)
	require.NoError(t, err)

	status := MonthlyTable(data, 2024, time.February, false)
	assert.Equal(t, "Attendance Feb 2024", status.Sheet)
	assert.Len(t, status.Columns, 3+29+12)
	require.Len(t, status.Rows, 1)
	assert.Equal(t, "P", status.Rows[0][3])

	hours := MonthlyTable(data, 2024, time.February, true)
	assert.Equal(t, "Hours Feb 2024", hours.Sheet)
	assert.Equal(t, 9.0, hours.Rows[0][3])
}
