package dbstore

import (
	"context"

	"github.com/iliyamo/rental-api/internal/model"
)

// PlaceAmenities returns the amenities linked to placeID, oldest first.
func (s *Store) PlaceAmenities(ctx context.Context, placeID string) ([]*model.Amenity, error) {
	const q = `SELECT a.id, a.created_at, a.updated_at, a.name
	           FROM amenities a
	           JOIN place_amenity pa ON pa.amenity_id = a.id
	           WHERE pa.place_id = ?
	           ORDER BY a.created_at, a.id`
	rows, err := s.db.QueryContext(ctx, q, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Amenity{}
	for rows.Next() {
		a := new(model.Amenity)
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LinkAmenity inserts the pair unless it already exists. The boolean is
// false when the link was already present.
func (s *Store) LinkAmenity(ctx context.Context, placeID, amenityID string) (bool, error) {
	const q = "INSERT IGNORE INTO place_amenity (place_id, amenity_id) VALUES (?, ?)"
	res, err := s.db.ExecContext(ctx, q, placeID, amenityID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnlinkAmenity deletes the pair. The boolean is false when no link existed.
func (s *Store) UnlinkAmenity(ctx context.Context, placeID, amenityID string) (bool, error) {
	const q = "DELETE FROM place_amenity WHERE place_id = ? AND amenity_id = ?"
	res, err := s.db.ExecContext(ctx, q, placeID, amenityID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
