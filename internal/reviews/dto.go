package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
)

// ReviewDTO is the public shape of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(m *models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        m.ID,
		Rating:    m.Rating,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
