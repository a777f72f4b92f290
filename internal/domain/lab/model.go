package lab

import (
	"time"

	"github.com/google/uuid"
)

type Lab struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	ContactInfo map[string]string `json:"contact_info"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
