package model

// Event belongs to exactly one Group. Name is the key used to match
// personal and official records.
type Event struct {
	ID      string `json:"id" koanf:"id"`
	GroupID string `json:"group_id" koanf:"group_id"`
	Name    string `json:"name" koanf:"name"`
	Order   int    `json:"order" koanf:"order"`
}

// Group holds an ordered sequence of events.
type Group struct {
	ID            string  `json:"id" koanf:"id"`
	CompetitionID string  `json:"competition_id" koanf:"competition_id"`
	Name          string  `json:"name" koanf:"name"`
	Events        []Event `json:"events" koanf:"events"`
}

// EventIDs returns the ids of the group's events in order.
func (g Group) EventIDs() []string {
	ids := make([]string, 0, len(g.Events))
	for _, e := range g.Events {
		ids = append(ids, e.ID)
	}
	return ids
}

// Competition is the top-level container.
type Competition struct {
	ID     string  `json:"id" koanf:"id"`
	Name   string  `json:"name" koanf:"name"`
	Groups []Group `json:"groups" koanf:"groups"`
}

// EventIDs returns the ids of every event across all groups, group order first.
func (c Competition) EventIDs() []string {
	var ids []string
	for _, g := range c.Groups {
		ids = append(ids, g.EventIDs()...)
	}
	return ids
}
