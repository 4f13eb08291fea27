package dto

import (
	"mime/multipart"

	"github.com/google/uuid"

	"appointer/internal/domains/resource/model"
	"appointer/shared"
	gDto "appointer/shared/dto"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

type CreateResourceRequest struct {
	Name      string                `json:"name"     validate:"required,max=100"`
	Category  string                `json:"category" validate:"omitempty,max=100"`
	Location  string                `json:"location" validate:"omitempty,max=100"`
	Capacity  int                   `json:"capacity" validate:"omitempty,min=0"`
	Image     *multipart.FileHeader `json:"image"    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
	Active    *bool                 `json:"active"`
}

func (c *CreateResourceRequest) ToModel(user string, imageURL string) model.Resource {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Resource{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Category: c.Category,
		Location: c.Location,
		Capacity: c.Capacity,
		Image:    imageURL,
		Active:   active,
		Metadata: gModel.NewMetadata(timezone.Now(), user),
	}
}

type UpdateResourceRequest struct {
	Name      string                `db:"name"     json:"name"     validate:"omitempty,max=100"`
	Category  *string               `db:"category" json:"category" validate:"omitempty,max=100"`
	Location  *string               `db:"location" json:"location" validate:"omitempty,max=100"`
	Capacity  *int                  `db:"capacity" json:"capacity" validate:"omitempty,min=0"`
	Image     *multipart.FileHeader `db:"-"        json:"image"    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `db:"-"        json:"-"`
	Active    *bool                 `db:"active"   json:"active"`
}

type ResourceResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Image    string `json:"image"`
	Active   bool   `json:"active"`
	gDto.Metadata
}

func (r *ResourceResponse) FromModel(m model.Resource) {
	r.ID = m.ID
	r.Name = m.Name
	r.Category = m.Category
	r.Location = m.Location
	r.Capacity = m.Capacity
	r.Image = m.Image
	r.Active = m.Active
	r.Metadata.FromModel(m.Metadata)
}

type GetResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetResourcesResponse) FromModels(models []model.Resource, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Resources = make([]ResourceResponse, len(models))
	for i, m := range models {
		r.Resources[i].FromModel(m)
	}
}
