package dto

import (
	"time"

	"appointer/shared/constant"
	"appointer/shared/model"
	"appointer/shared/timezone"
)

// Metadata is the audit block embedded in every response, rendered in the
// configured timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedAt string `json:"modified_at,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}

func (m *Metadata) FromModel(audit model.Metadata) {
	*m = Metadata{
		CreatedAt:  stamp(audit.CreatedAt),
		CreatedBy:  audit.CreatedBy,
		ModifiedAt: stamp(audit.ModifiedAt),
		ModifiedBy: audit.ModifiedBy,
	}
}
