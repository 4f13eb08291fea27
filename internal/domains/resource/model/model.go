package model

import "appointer/shared/model"

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID       = "id"
	FieldName     = "name"
	FieldCategory = "category"
	FieldLocation = "location"
	FieldCapacity = "capacity"
	FieldImage    = "image"
	FieldActive   = "active"
)

// Resource is a bookable physical thing: a chair, a room, a court.
type Resource struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Category string `db:"category"`
	Location string `db:"location"`
	Capacity int    `db:"capacity"`
	Image    string `db:"image"`
	Active   bool   `db:"active"`
	model.Metadata
}
