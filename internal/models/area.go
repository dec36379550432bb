package models

// Area is a room (or zone) within a building that shades are installed in.
type Area struct {
	ID             int    `json:"id"`
	BuildingNumber string `json:"building_number"`
	Floor          int    `json:"floor"`
	Room           string `json:"room"`
	RoomNumber     string `json:"room_number"`
	Description    string `json:"description,omitempty"`
}
