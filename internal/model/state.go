package model

// State is a top-level region owning cities.
type State struct {
	BaseModel
	Name string `json:"name"`
}

func (*State) Kind() Kind              { return KindState }
func (*State) Refs() map[string]string { return nil }

// City belongs to exactly one State and owns places.
type City struct {
	BaseModel
	StateID string `json:"state_id"`
	Name    string `json:"name"`
}

func (*City) Kind() Kind                { return KindCity }
func (c *City) Refs() map[string]string { return map[string]string{"state_id": c.StateID} }
