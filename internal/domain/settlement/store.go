package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the read subset of *pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads daily reports from the daily-report database. It never writes.
type Store struct {
	DB Querier
}

func NewStore(db Querier) *Store {
	return &Store{DB: db}
}

const reportColumns = `
    r.id::text, r.driver_id::text, COALESCE(d.name, ''), r.date,
    COALESCE(r.deposit_amount, 0),
    COALESCE(r.etc_empty_card, 'company'),
    COALESCE(r.etc_return_fee_method, 'none'),
    COALESCE(r.etc_return_fee_claimed, 0),
    COALESCE(r.fuel_amount, 0),
    COALESCE(r.fuel_paid_by, '')
  FROM dailyreport_driverdailyreport r
  LEFT JOIN staffbook_driver d ON d.id = r.driver_id`

func scanReport(row pgx.Row) (Report, error) {
	var report Report
	err := row.Scan(
		&report.ID, &report.DriverID, &report.DriverName, &report.Date,
		&report.Params.DepositAmount,
		&report.Params.EtcEmptyCardOwner,
		&report.Params.EtcReturnFeeMethod,
		&report.Params.EtcReturnFeeClaimed,
		&report.Params.FuelAmount,
		&report.Params.FuelPaidBy,
	)
	return report, err
}

func (s *Store) ListReportsByDate(ctx context.Context, date time.Time) ([]Report, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+reportColumns+`
    WHERE r.date = $1
    ORDER BY r.id
  `, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reports {
		entries, err := s.listEntries(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Entries = entries
	}
	return reports, nil
}

func (s *Store) GetReport(ctx context.Context, reportID string) (Report, error) {
	report, err := scanReport(s.DB.QueryRow(ctx, `SELECT `+reportColumns+`
    WHERE r.id::text = $1
  `, reportID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrReportNotFound
	}
	if err != nil {
		return Report{}, err
	}
	report.Entries, err = s.listEntries(ctx, report.ID)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// entryQuery reads one report's items. The item table has no advance or
// soft-delete columns: advance rows are recognised by their payment label and
// deleted rows are removed by the form, so both flags are selected as false.
const entryQuery = `
    SELECT COALESCE(ride_time, ''),
           COALESCE(meter_fee, 0)::int,
           COALESCE(payment_method, ''),
           is_charter,
           COALESCE(charter_amount_jpy, 0)::int,
           COALESCE(charter_payment_method, ''),
           false AS is_advance,
           COALESCE(advance_amount, 0),
           is_pending,
           false AS is_deleted,
           COALESCE(etc_riding, 0),
           COALESCE(etc_empty, 0),
           COALESCE(etc_riding_charge_type, etc_charge_type, 'company'),
           COALESCE(etc_empty_charge_type, etc_charge_type, 'company'),
           COALESCE(note, '')
    FROM dailyreport_driverdailyreportitem
    WHERE report_id::text = $1
    ORDER BY id
  `

func (s *Store) listEntries(ctx context.Context, reportID string) ([]TripEntry, error) {
	rows, err := s.DB.Query(ctx, entryQuery, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TripEntry
	for rows.Next() {
		var e TripEntry
		if err := rows.Scan(
			&e.RideTime, &e.MeterFee, &e.PaymentMethodRaw,
			&e.IsCharter, &e.CharterAmount, &e.CharterPaymentMethod,
			&e.IsAdvance, &e.AdvanceAmount,
			&e.IsPending, &e.IsDeleted,
			&e.EtcRidingAmount, &e.EtcEmptyAmount,
			&e.EtcRidingChargeParty, &e.EtcEmptyChargeParty,
			&e.Note,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
