package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed 写入初始内容，仅在对应表为空时执行。
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := seedDestinations(ctx, db); err != nil {
		return err
	}
	if err := seedServices(ctx, db); err != nil {
		return err
	}
	return seedEvents(ctx, db)
}

func seedDestinations(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&Destination{}).Count(&count).Error; err != nil {
		return fmt.Errorf("统计目的地失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := []Destination{
		{
			Slug:    "panama",
			Name:    "Panama",
			Region:  "Latin America",
			Summary: "Panama lies between North and South America with rainforest, island and canal experiences.",
			Details: mustJSONArray(
				"With diverse natural species and cultural composition, Panama enables travel from the Pacific to the Atlantic via the world-famous 48-mile Panama Canal.",
				"Signature sites include Panama City, the Panama Canal, Casco Viejo, Bocas del Toro, Pearl Islands and San Blas Islands.",
			),
		},
		{
			Slug:    "argentina",
			Name:    "Argentina",
			Region:  "Latin America",
			Summary: "Argentina is a vast country known for tango, cuisine and dramatic landscapes.",
			Details: mustJSONArray(
				"Sights include Buenos Aires, Iguazú Falls, Perito Moreno Glacier, Salta, Patagonia and Mendoza.",
			),
		},
		{
			Slug:    "mexico",
			Name:    "Mexico",
			Region:  "Latin America",
			Summary: "Mexico offers varied climates, cultural destinations and coastal retreats.",
			Details: mustJSONArray(
				"Highlighted locations: Oaxaca, Tulum, Playa del Carmen, Guadalajara, San Miguel de Allende, Cancun, Mérida and Mexico City.",
			),
		},
	}

	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("写入目的地失败: %w", err)
	}
	return nil
}

func seedServices(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&TourService{}).Count(&count).Error; err != nil {
		return fmt.Errorf("统计服务条目失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := []TourService{
		{
			Slug:    "core-services",
			Href:    "/services",
			Title:   "Receptive Services Portfolio",
			Excerpt: "Tailor-made receptive services covering events, logistics and travel across the United States and the Americas.",
			Details: mustJSONArray(
				"Incentive, travel, meetings and conferences event management.",
				"Group reservations for student, leisure, incentive and MICE travellers.",
				"Individual reservations (FIT) with accommodation in well-positioned hotels.",
				"Venue arrangements, airport transfers, domestic flights and ground transportation.",
			),
		},
		{
			Slug:    "mice",
			Href:    "/mice",
			Title:   "MICE Expertise",
			Excerpt: "Meetings, incentives, conferences and exhibitions delivered with detailed local knowledge and logistical precision.",
			Details: mustJSONArray(
				"Meetings: tailored support for gatherings of all sizes.",
				"Incentives: entertainment-led programmes that celebrate achievement.",
				"Conferences: comprehensive coordination for forums, summits and congresses.",
				"Exhibitions: turnkey solutions for trade fairs and expos.",
			),
		},
	}

	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("写入服务条目失败: %w", err)
	}
	return nil
}

func seedEvents(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&Event{}).Count(&count).Error; err != nil {
		return fmt.Errorf("统计活动失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	items := []Event{
		{
			Slug:      "imex-america",
			Title:     "IMEX America",
			Location:  "Las Vegas, USA",
			Summary:   "Annual trade show for the global meetings, events and incentive travel industry.",
			StartDate: now.AddDate(0, 2, 0),
			EndDate:   now.AddDate(0, 2, 3),
		},
	}

	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("写入活动失败: %w", err)
	}
	return nil
}

func mustJSONArray(values ...string) datatypes.JSON {
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}
