package model

// Kind identifies an entity type. The value doubles as the "__class__" tag
// written into serialized records.
type Kind string

const (
	KindState   Kind = "State"
	KindCity    Kind = "City"
	KindAmenity Kind = "Amenity"
	KindUser    Kind = "User"
	KindPlace   Kind = "Place"
	KindReview  Kind = "Review"
)

// Kinds lists every entity kind with parents ahead of the kinds that
// reference them. Backends that enforce foreign keys persist in this order.
var Kinds = []Kind{KindState, KindUser, KindAmenity, KindCity, KindPlace, KindReview}

// Collection returns the plural name used for tables and the /stats keys.
func (k Kind) Collection() string {
	switch k {
	case KindState:
		return "states"
	case KindCity:
		return "cities"
	case KindAmenity:
		return "amenities"
	case KindUser:
		return "users"
	case KindPlace:
		return "places"
	case KindReview:
		return "reviews"
	}
	return ""
}

// ParseKind maps a "__class__" value back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// New returns an empty entity of the given kind, or nil for an unknown kind.
func New(k Kind) Entity {
	switch k {
	case KindState:
		return &State{}
	case KindCity:
		return &City{}
	case KindAmenity:
		return &Amenity{}
	case KindUser:
		return &User{}
	case KindPlace:
		return &Place{}
	case KindReview:
		return &Review{}
	}
	return nil
}
