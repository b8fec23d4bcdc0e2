package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/woozymasta/voronoimap/internal/geo"

	// postgres driver for database/sql
	_ "github.com/lib/pq"
)

// OpenPostgres opens a connection pool for dsn and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return db, nil
}

// QueryStations runs query and reads (lat, lon, label) rows in result order.
// Rows with NULL coordinates are skipped; a NULL label becomes empty.
func QueryStations(ctx context.Context, db *sql.DB, query string) ([]geo.NamedStation, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stations query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stations []geo.NamedStation
	for rows.Next() {
		var lat, lon sql.NullFloat64
		var label sql.NullString
		if err := rows.Scan(&lat, &lon, &label); err != nil {
			return nil, fmt.Errorf("stations query: %w", err)
		}
		if !lat.Valid || !lon.Valid {
			continue
		}
		stations = append(stations, geo.NamedStation{
			Point: geo.GeoPoint{Lat: lat.Float64, Lon: lon.Float64},
			Label: label.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stations query: %w", err)
	}

	if len(stations) == 0 {
		return nil, geo.ErrNoStations
	}
	return stations, nil
}
