package listings

import (
	"time"

	"github.com/rongwang/studyswap/internal/models"
)

var sampleDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SampleListings returns the demo offers shown on an empty installation.
// Their points are stored as published, not recomputed.
func SampleListings() []models.Listing {
	return []models.Listing{
		{
			ID:          "1",
			Title:       "Chambre lumineuse proche Sorbonne",
			City:        "Paris",
			Postal:      "75005",
			Description: "Belle chambre dans appartement calme, à 5 min de la Sorbonne. Parfait pour étudiant en échange.",
			Type:        models.ListingRoom,
			Capacity:    1,
			Points:      30,
			Amenities:   []string{"wifi", "kitchen", "desk"},
			UserID:      "demo1",
			UserName:    "Marie Dubois",
			CreatedAt:   sampleDate,
		},
		{
			ID:          "2",
			Title:       "Studio moderne centre Lyon",
			City:        "Lyon",
			Postal:      "69002",
			Description: "Studio entièrement équipé au cœur de Lyon. Idéal pour une expérience urbaine authentique.",
			Type:        models.ListingStudio,
			Capacity:    2,
			Points:      45,
			Amenities:   []string{"wifi", "kitchen", "washing"},
			UserID:      "demo2",
			UserName:    "Lucas Martin",
			CreatedAt:   sampleDate,
		},
		{
			ID:          "3",
			Title:       "Chambre confortable à Marseille",
			City:        "Marseille",
			Postal:      "13001",
			Description: "Chambre dans colocation sympa, proche de la plage et des universités. Ambiance conviviale.",
			Type:        models.ListingRoom,
			Capacity:    1,
			Points:      25,
			Amenities:   []string{"wifi", "balcony"},
			UserID:      "demo3",
			UserName:    "Sophie Lefebvre",
			CreatedAt:   sampleDate,
		},
		{
			ID:          "4",
			Title:       "Appartement spacieux Bordeaux",
			City:        "Bordeaux",
			Postal:      "33000",
			Description: "Grand appartement T3 avec vue sur la Garonne. Proche des transports et commerces.",
			Type:        models.ListingApartment,
			Capacity:    3,
			Points:      60,
			Amenities:   []string{"wifi", "kitchen", "washing", "parking", "desk"},
			UserID:      "demo4",
			UserName:    "Thomas Rousseau",
			CreatedAt:   sampleDate,
		},
		{
			ID:          "5",
			Title:       "Chambre étudiante Toulouse",
			City:        "Toulouse",
			Postal:      "31000",
			Description: "Chambre cosy dans quartier étudiant animé. Toutes commodités à proximité.",
			Type:        models.ListingRoom,
			Capacity:    1,
			Points:      28,
			Amenities:   []string{"wifi", "desk", "kitchen"},
			UserID:      "demo5",
			UserName:    "Emma Petit",
			CreatedAt:   sampleDate,
		},
		{
			ID:          "6",
			Title:       "Studio près de Sciences Po",
			City:        "Paris",
			Postal:      "75007",
			Description: "Petit studio charmant à deux pas de Sciences Po. Quartier calme et résidentiel.",
			Type:        models.ListingStudio,
			Capacity:    1,
			Points:      40,
			Amenities:   []string{"wifi", "kitchen"},
			UserID:      "demo6",
			UserName:    "Alexandre Moreau",
			CreatedAt:   sampleDate,
		},
	}
}
