package model

import "appointer/shared/model"

const (
	TableName  = "specialists"
	EntityName = "specialist"

	FieldID        = "id"
	FieldName      = "name"
	FieldSpecialty = "specialty"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldActive    = "active"
)

type Specialist struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Specialty string `db:"specialty"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	Active    bool   `db:"active"`
	model.Metadata
}
