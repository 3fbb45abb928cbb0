package store

import (
	"database/sql"
	"time"

	"github.com/acaibowlz/routine-bot/internal/domain"
)

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toCycleCols(c *domain.Cycle) (sql.NullInt64, sql.NullString) {
	if c == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(c.Count), Valid: true},
		sql.NullString{String: string(c.Unit), Valid: true}
}

func fromCycleCols(count sql.NullInt64, unit sql.NullString) *domain.Cycle {
	if !count.Valid || !unit.Valid {
		return nil
	}
	return &domain.Cycle{Count: int(count.Int64), Unit: domain.CycleUnit(unit.String)}
}
