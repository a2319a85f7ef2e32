package entities

import "strings"

// User is a voter. Identity is carried by ID alone; Label is display-only.
type User struct {
	ID    string
	Label string
}

func NewUser(id string, label string) User {
	return User{
		ID:    strings.TrimSpace(id),
		Label: strings.TrimSpace(label),
	}
}

func (u User) IsZero() bool {
	return strings.TrimSpace(u.ID) == ""
}

func (u User) String() string {
	if u.Label != "" {
		return u.Label
	}
	return u.ID
}

// Restaurant is a lunch candidate. Identity is carried by ID alone.
type Restaurant struct {
	ID   string
	Name string
}

func NewRestaurant(id string, name string) Restaurant {
	return Restaurant{
		ID:   strings.TrimSpace(id),
		Name: strings.TrimSpace(name),
	}
}

func (r Restaurant) IsZero() bool {
	return strings.TrimSpace(r.ID) == ""
}

func (r Restaurant) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
