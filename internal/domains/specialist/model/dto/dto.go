package dto

import (
	"github.com/google/uuid"

	"appointer/internal/domains/specialist/model"
	"appointer/shared"
	gDto "appointer/shared/dto"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

type CreateSpecialistRequest struct {
	Name      string `json:"name"      validate:"required,max=100"`
	Specialty string `json:"specialty" validate:"omitempty,max=100"`
	Email     string `json:"email"     validate:"omitempty,email,max=255"`
	Phone     string `json:"phone"     validate:"omitempty,max=30"`
	Active    *bool  `json:"active"`
}

func (c *CreateSpecialistRequest) ToModel(user string) model.Specialist {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Specialist{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Specialty: c.Specialty,
		Email:     c.Email,
		Phone:     c.Phone,
		Active:    active,
		Metadata:  gModel.NewMetadata(timezone.Now(), user),
	}
}

// UpdateSpecialistRequest is a partial update; absent fields keep their value.
// Setting active to false is the soft deactivation.
type UpdateSpecialistRequest struct {
	Name      string  `db:"name"      json:"name"      validate:"omitempty,max=100"`
	Specialty *string `db:"specialty" json:"specialty" validate:"omitempty,max=100"`
	Email     *string `db:"email"     json:"email"     validate:"omitempty,email,max=255"`
	Phone     *string `db:"phone"     json:"phone"     validate:"omitempty,max=30"`
	Active    *bool   `db:"active"    json:"active"`
}

type SpecialistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
	gDto.Metadata
}

func (r *SpecialistResponse) FromModel(m model.Specialist) {
	r.ID = m.ID
	r.Name = m.Name
	r.Specialty = m.Specialty
	r.Email = m.Email
	r.Phone = m.Phone
	r.Active = m.Active
	r.Metadata.FromModel(m.Metadata)
}

type GetSpecialistsResponse struct {
	Specialists []SpecialistResponse `json:"specialists"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetSpecialistsResponse) FromModels(models []model.Specialist, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Specialists = make([]SpecialistResponse, len(models))
	for i, m := range models {
		r.Specialists[i].FromModel(m)
	}
}
