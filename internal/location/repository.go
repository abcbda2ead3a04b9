package location

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/abbasiconnect/api/internal/database"
	"github.com/abbasiconnect/api/internal/user"
)

// Store is the persistence surface the location service depends on.
type Store interface {
	GetPincode(ctx context.Context, pincode string) (*PincodeInfo, error)
	PincodesInBox(ctx context.Context, box BoundingBox) ([]PincodeInfo, error)
	PincodesForCity(ctx context.Context, city string) ([]PincodeInfo, error)
	CitySuggestions(ctx context.Context, query string, limit int) ([]string, error)
	VerifiedUsersInPincodes(ctx context.Context, pincodes []string, excludeUserID string, limit int) ([]NearbyUser, error)
	UpcomingEventsInCities(ctx context.Context, cities []string, after time.Time, limit int) ([]NearbyEvent, error)
}

type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func pincodeFromRow(row *database.Pincode) PincodeInfo {
	return PincodeInfo{
		Pincode:   row.Pincode,
		City:      row.City,
		District:  row.District,
		State:     row.State,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
	}
}

func (r *Repository) GetPincode(ctx context.Context, pincode string) (*PincodeInfo, error) {
	row := new(database.Pincode)
	err := r.db.NewSelect().
		Model(row).
		Where("pincode = ?", pincode).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPincodeNotFound
		}
		return nil, err
	}

	info := pincodeFromRow(row)
	return &info, nil
}

func (r *Repository) PincodesInBox(ctx context.Context, box BoundingBox) ([]PincodeInfo, error) {
	var rows []database.Pincode
	err := r.db.NewSelect().
		Model(&rows).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]PincodeInfo, len(rows))
	for i := range rows {
		infos[i] = pincodeFromRow(&rows[i])
	}
	return infos, nil
}

func (r *Repository) PincodesForCity(ctx context.Context, city string) ([]PincodeInfo, error) {
	var rows []database.Pincode
	err := r.db.NewSelect().
		Model(&rows).
		Where("lower(city) = lower(?)", city).
		OrderExpr("pincode ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]PincodeInfo, len(rows))
	for i := range rows {
		infos[i] = pincodeFromRow(&rows[i])
	}
	return infos, nil
}

func (r *Repository) CitySuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	var cities []string
	err := r.db.NewSelect().
		Model((*database.Pincode)(nil)).
		ColumnExpr("DISTINCT city").
		Where("city ILIKE ?", query+"%").
		OrderExpr("city ASC").
		Limit(limit).
		Scan(ctx, &cities)
	if err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *Repository) VerifiedUsersInPincodes(ctx context.Context, pincodes []string, excludeUserID string, limit int) ([]NearbyUser, error) {
	if len(pincodes) == 0 {
		return nil, nil
	}

	var rows []database.User
	q := r.db.NewSelect().
		Model(&rows).
		Where("pincode IN (?)", bun.In(pincodes)).
		Where("status = ?", string(user.StatusVerified)).
		Where("deleted_at IS NULL").
		Limit(limit)
	if excludeUserID != "" {
		q = q.Where("id != ?", excludeUserID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	users := make([]NearbyUser, len(rows))
	for i, row := range rows {
		users[i] = NearbyUser{
			ID:         row.ID,
			Name:       row.Name,
			City:       row.City,
			Pincode:    row.Pincode,
			Profession: row.Profession,
			PhotoURL:   row.PhotoURL,
		}
	}
	return users, nil
}

func (r *Repository) UpcomingEventsInCities(ctx context.Context, cities []string, after time.Time, limit int) ([]NearbyEvent, error) {
	if len(cities) == 0 {
		return nil, nil
	}

	var rows []database.Event
	err := r.db.NewSelect().
		Model(&rows).
		Where("lower(city) IN (?)", bun.In(lowerAll(cities))).
		Where("event_date >= ?", after).
		OrderExpr("event_date ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]NearbyEvent, len(rows))
	for i, row := range rows {
		events[i] = NearbyEvent{
			ID:        row.ID,
			Title:     row.Title,
			City:      row.City,
			EventDate: row.EventDate,
			EventTime: row.EventTime,
		}
	}
	return events, nil
}
