package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Age       *int      `json:"age"`
	Gender    *string   `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
