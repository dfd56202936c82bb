package dbstore

import (
	"slices"
	"strings"

	"github.com/iliyamo/rental-api/internal/model"
)

// table maps one entity kind onto its MySQL table. columns excludes the
// shared id/created_at/updated_at trio; values and targets must list the
// same columns in the same order.
type table struct {
	name    string
	columns []string
	values  func(model.Entity) []any
	targets func(model.Entity) []any
}

var tables = map[model.Kind]table{
	model.KindState: {
		name:    "states",
		columns: []string{"name"},
		values:  func(e model.Entity) []any { s := e.(*model.State); return []any{s.Name} },
		targets: func(e model.Entity) []any { s := e.(*model.State); return []any{&s.Name} },
	},
	model.KindCity: {
		name:    "cities",
		columns: []string{"state_id", "name"},
		values:  func(e model.Entity) []any { c := e.(*model.City); return []any{c.StateID, c.Name} },
		targets: func(e model.Entity) []any { c := e.(*model.City); return []any{&c.StateID, &c.Name} },
	},
	model.KindAmenity: {
		name:    "amenities",
		columns: []string{"name"},
		values:  func(e model.Entity) []any { a := e.(*model.Amenity); return []any{a.Name} },
		targets: func(e model.Entity) []any { a := e.(*model.Amenity); return []any{&a.Name} },
	},
	model.KindUser: {
		name:    "users",
		columns: []string{"email", "password", "first_name", "last_name"},
		values: func(e model.Entity) []any {
			u := e.(*model.User)
			return []any{u.Email, u.Password, u.FirstName, u.LastName}
		},
		targets: func(e model.Entity) []any {
			u := e.(*model.User)
			return []any{&u.Email, &u.Password, &u.FirstName, &u.LastName}
		},
	},
	model.KindPlace: {
		name: "places",
		columns: []string{"city_id", "user_id", "name", "description", "number_rooms",
			"number_bathrooms", "max_guest", "price_by_night", "latitude", "longitude"},
		values: func(e model.Entity) []any {
			p := e.(*model.Place)
			return []any{p.CityID, p.UserID, p.Name, p.Description, p.NumberRooms,
				p.NumberBathrooms, p.MaxGuest, p.PriceByNight, p.Latitude, p.Longitude}
		},
		targets: func(e model.Entity) []any {
			p := e.(*model.Place)
			return []any{&p.CityID, &p.UserID, &p.Name, &p.Description, &p.NumberRooms,
				&p.NumberBathrooms, &p.MaxGuest, &p.PriceByNight, &p.Latitude, &p.Longitude}
		},
	},
	model.KindReview: {
		name:    "reviews",
		columns: []string{"place_id", "user_id", "text"},
		values:  func(e model.Entity) []any { r := e.(*model.Review); return []any{r.PlaceID, r.UserID, r.Text} },
		targets: func(e model.Entity) []any { r := e.(*model.Review); return []any{&r.PlaceID, &r.UserID, &r.Text} },
	},
}

func (t table) allColumns() []string {
	return append([]string{"id", "created_at", "updated_at"}, t.columns...)
}

func (t table) hasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

func (t table) selectSQL() string {
	return "SELECT " + strings.Join(t.allColumns(), ", ") + " FROM " + t.name
}

// upsertSQL inserts a row or, when the id exists, overwrites every column
// except id and created_at.
func (t table) upsertSQL() string {
	cols := t.allColumns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	updates := make([]string, 0, len(cols)-2)
	for _, c := range cols[2:] {
		updates = append(updates, c+" = VALUES("+c+")")
	}
	return "INSERT INTO " + t.name + " (" + strings.Join(cols, ", ") + ") VALUES (" + marks +
		") ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
}

func (t table) args(e model.Entity) []any {
	b := e.Base()
	return append([]any{b.ID, b.CreatedAt, b.UpdatedAt}, t.values(e)...)
}

func (t table) dest(e model.Entity) []any {
	b := e.Base()
	return append([]any{&b.ID, &b.CreatedAt, &b.UpdatedAt}, t.targets(e)...)
}
