package model

// Amenity is a feature a place can offer. It is linked to places many-to-many.
type Amenity struct {
	BaseModel
	Name string `json:"name"`
}

func (*Amenity) Kind() Kind              { return KindAmenity }
func (*Amenity) Refs() map[string]string { return nil }
