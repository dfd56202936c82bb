package model

// Place is a rental listing in a City, owned by a User.
//
// AmenityIDs is only populated by backends without native link storage;
// callers go through the relation resolver instead of reading it directly.
type Place struct {
	BaseModel
	CityID          string   `json:"city_id"`
	UserID          string   `json:"user_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	NumberRooms     int      `json:"number_rooms"`
	NumberBathrooms int      `json:"number_bathrooms"`
	MaxGuest        int      `json:"max_guest"`
	PriceByNight    int      `json:"price_by_night"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	AmenityIDs      []string `json:"amenity_ids,omitempty"`
}

func (*Place) Kind() Kind { return KindPlace }

func (p *Place) Refs() map[string]string {
	return map[string]string{"city_id": p.CityID, "user_id": p.UserID}
}

// Review is a user's text about a place.
type Review struct {
	BaseModel
	PlaceID string `json:"place_id"`
	UserID  string `json:"user_id"`
	Text    string `json:"text"`
}

func (*Review) Kind() Kind { return KindReview }

func (r *Review) Refs() map[string]string {
	return map[string]string{"place_id": r.PlaceID, "user_id": r.UserID}
}
