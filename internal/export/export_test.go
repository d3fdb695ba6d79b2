package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-dashboard/internal/fixtures"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func snapshot() models.Snapshot {
	return fixtures.Snapshot(testNow).Normalize()
}

func TestParse(t *testing.T) {
	rt, err := ParseReportType(" VOR ")
	require.NoError(t, err)
	assert.Equal(t, ReportVOR, rt)

	_, err = ParseReportType("telemetry")
	assert.ErrorIs(t, err, ErrUnknownReport)

	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "fleet-report-2025-03-14.csv", Filename(ReportFleet, FormatCSV, testNow))
	assert.Equal(t, "agreement-AGR-1001-2025-03-14.pdf", AgreementFilename("AGR-1001", FormatPDF, testNow))
}

func TestToRows_EveryRowMatchesHeaders(t *testing.T) {
	snap := snapshot()
	for _, rt := range ReportTypes() {
		t.Run(string(rt), func(t *testing.T) {
			table, err := ToRows(rt, snap, testNow)
			require.NoError(t, err)
			assert.NotEmpty(t, table.Title)
			assert.NotEmpty(t, table.Rows)
			for _, row := range table.Rows {
				assert.Len(t, row, len(table.Headers))
			}
		})
	}

	_, err := ToRows("unknown", snap, testNow)
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestToRows_Fleet(t *testing.T) {
	table, err := ToRows(ReportFleet, snapshot(), testNow)
	require.NoError(t, err)
	require.Len(t, table.Rows, 6)
	first := table.Rows[0]
	assert.Equal(t, "BYD-001", first[0])
	assert.Equal(t, "on-hire", first[5])
	assert.Regexp(t, `^\d{2}/\d{2}/\d{2}$`, first[9])
}

func TestToRows_VOR(t *testing.T) {
	table, err := ToRows(ReportVOR, snapshot(), testNow)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "BYD-002", table.Rows[0][0])
	assert.Equal(t, "In Workshop", table.Rows[0][5])
	assert.Equal(t, "50", table.Rows[0][7])
	assert.Equal(t, "P0A80, U0100", table.Rows[0][8])
	assert.Equal(t, "None", table.Rows[2][8])
	require.Len(t, table.Details, 3)
	assert.Contains(t, table.Details[0].Heading, "BD21 XYZ")
}

func TestToRows_PlaceholdersForBadRecords(t *testing.T) {
	snap := models.Snapshot{
		Agreements: []models.Agreement{{AgreementID: "AGR-X", VehicleID: "BYD-404", StartAt: "garbage"}},
		Invoices:   []models.Invoice{{Number: "INV-X", SupplierID: "nobody", Amount: 10}},
	}
	agreements, err := ToRows(ReportAgreements, snap, testNow)
	require.NoError(t, err)
	row := agreements.Rows[0]
	assert.Equal(t, Unknown, row[2])
	assert.Equal(t, "—", row[4])
	assert.Equal(t, "—", row[5])
	assert.Equal(t, "—", row[6])

	financial, err := ToRows(ReportFinancial, snap, testNow)
	require.NoError(t, err)
	assert.Equal(t, Unknown, financial.Rows[0][1])
}

func TestToRows_FinancialTotals(t *testing.T) {
	financial, err := ToRows(ReportFinancial, snapshot(), testNow)
	require.NoError(t, err)
	last := financial.Rows[len(financial.Rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "£1,979.99", last[5])

	pos, err := ToRows(ReportPurchaseOrders, snapshot(), testNow)
	require.NoError(t, err)
	assert.Equal(t, "£730.50", pos.Rows[len(pos.Rows)-1][5])
}

func TestToRows_AgreementsPenalties(t *testing.T) {
	table, err := ToRows(ReportAgreements, snapshot(), testNow)
	require.NoError(t, err)
	assert.Equal(t, "AB12 CDE", table.Rows[0][2])
	assert.Equal(t, "£225.50", table.Rows[1][10])
	assert.Equal(t, "1", table.Rows[1][11])
}

func TestAgreementRows(t *testing.T) {
	snap := snapshot()
	a, ok := snap.AgreementByID("AGR-1002")
	require.True(t, ok)
	table := AgreementRows(a, snap)
	assert.Equal(t, []string{"Field", "Value"}, table.Headers)
	fields := map[string]string{}
	for _, row := range table.Rows {
		require.Len(t, row, 2)
		fields[row[0]] = row[1]
	}
	assert.Equal(t, "DF19 PQR", fields["Registration"])
	assert.Equal(t, "£599.00", fields["Monthly Rate"])
	assert.Contains(t, fields["Penalty pen-1"], "£150.00")
	assert.Contains(t, fields["Breach br-2"], "critical")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	snap := snapshot()
	for _, rt := range ReportTypes() {
		t.Run(string(rt), func(t *testing.T) {
			table, err := ToRows(rt, snap, testNow)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, table))

			records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
			require.NoError(t, err)
			assert.Len(t, records, len(table.Rows)+1)
			assert.Equal(t, table.Headers, records[0])
			for _, rec := range records {
				assert.Len(t, rec, len(table.Headers))
			}
		})
	}
}

func TestWritePDF(t *testing.T) {
	table, err := ToRows(ReportVOR, snapshot(), testNow)
	require.NoError(t, err)

	var buf bytes.Buffer
	pages, err := WritePDF(&buf, table, PDFOptions{GeneratedAt: testNow, IncludeDetails: true})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, pages)
}

func TestWritePDF_PaginatesLongTables(t *testing.T) {
	table := Table{Title: "Long", Headers: []string{"#", "Amount"}}
	for i := 0; i < 200; i++ {
		table.Rows = append(table.Rows, []string{fmt.Sprint(i), "£1,234.50"})
	}
	var buf bytes.Buffer
	pages, err := WritePDF(&buf, table, PDFOptions{GeneratedAt: testNow})
	require.NoError(t, err)
	assert.Greater(t, pages, 5)

	var details []Detail
	for i := 0; i < 40; i++ {
		details = append(details, Detail{Heading: fmt.Sprintf("Vehicle %d", i), Lines: []string{"Returned: 10:00 on 01/03/25", "Fault codes: None"}})
	}
	withDetails := Table{Title: "VOR", Headers: []string{"A"}, Rows: [][]string{{"x"}}, Details: details}
	buf.Reset()
	pages, err = WritePDF(&buf, withDetails, PDFOptions{GeneratedAt: testNow, IncludeDetails: true})
	require.NoError(t, err)
	assert.Greater(t, pages, 1)

	buf.Reset()
	pages, err = WritePDF(&buf, withDetails, PDFOptions{GeneratedAt: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, pages, "details are omitted unless requested")
}

func TestWrite_Dispatch(t *testing.T) {
	table := Table{Title: "T", Headers: []string{"a"}, Rows: [][]string{{"1"}}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, FormatCSV, PDFOptions{}))
	assert.Equal(t, "a\n1\n", buf.String())
	assert.ErrorIs(t, Write(&buf, table, "doc", PDFOptions{}), ErrUnknownFormat)
}
