package model

// User owns places and writes reviews. Password holds a bcrypt hash; it is
// persisted but stripped from API output by PublicDict.
type User struct {
	BaseModel
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (*User) Kind() Kind              { return KindUser }
func (*User) Refs() map[string]string { return nil }
