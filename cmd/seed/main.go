// Command seed loads sample parking facilities and prints development tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parkride/internal/app"
	"parkride/internal/auth"
	"parkride/internal/config"
	"parkride/internal/domain"
	"parkride/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log, logCloser := app.NewLogger(cfg.Log)
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := app.OpenRepositories(ctx, cfg, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to store")
	}
	defer repos.Close(context.Background())

	now := time.Now().UTC()
	for _, f := range sampleFacilities(now) {
		if err := repos.Facilities.Create(ctx, f); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				log.WithField("facility", f.Name).Info("facility already seeded")
				continue
			}
			log.WithError(err).WithField("facility", f.Name).Fatal("failed to seed facility")
		}
		log.WithFields(logrus.Fields{"facility_id": f.ID, "name": f.Name}).Info("seeded facility")
	}

	for _, u := range []struct {
		sub  string
		role domain.Role
	}{
		{"user-demo", domain.RoleUser},
		{"admin-demo", domain.RoleAdmin},
	} {
		token, err := auth.CreateAccessToken(cfg.Auth.JWTSecret, u.sub, u.role, 24*time.Hour)
		if err != nil {
			log.WithError(err).Fatal("failed to issue token")
		}
		fmt.Printf("%s (%s): %s\n", u.sub, u.role, token)
	}
}

// sampleFacilities uses name-derived IDs so reseeding is a no-op.
func sampleFacilities(now time.Time) []*domain.Facility {
	weekdays := func(open, close string) []domain.OperatingHours {
		days := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
		hours := make([]domain.OperatingHours, 0, len(days))
		for _, d := range days {
			hours = append(hours, domain.OperatingHours{Day: d, Open: open, Close: close})
		}
		return hours
	}
	id := func(name string) string {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte("parkride:facility:"+name)).String()
	}

	facilities := []*domain.Facility{
		{
			Name:           "MG Road Metro Parking",
			Address:        "MG Road Metro Station, Mahatma Gandhi Road",
			City:           "Bangalore",
			State:          "Karnataka",
			ZipCode:        "560001",
			Coordinates:    domain.Coordinates{Latitude: 12.9756, Longitude: 77.6066},
			TotalSpots:     120,
			AvailableSpots: 120,
			HourlyRate:     50,
			DailyRate:      300,
			Amenities:      []string{"covered", "cctv", "ev_charging", "security"},
			VehicleTypeRates: []domain.VehicleTypeRate{
				{VehicleType: "Hatchback", HourlyMultiplier: 1.0},
				{VehicleType: "Sedan", HourlyMultiplier: 1.2},
				{VehicleType: "SUV", HourlyMultiplier: 1.5},
			},
			OperatingHours: weekdays("05:30", "23:30"),
		},
		{
			Name:           "Chennai Central Station Parking",
			Address:        "Puratchi Thalaivar Dr. M.G. Ramachandran Central Railway Station",
			City:           "Chennai",
			State:          "Tamil Nadu",
			ZipCode:        "600003",
			Coordinates:    domain.Coordinates{Latitude: 13.0827, Longitude: 80.2757},
			TotalSpots:     200,
			AvailableSpots: 200,
			HourlyRate:     40,
			DailyRate:      250,
			Amenities:      []string{"cctv", "security", "restroom"},
			VehicleTypeRates: []domain.VehicleTypeRate{
				{VehicleType: "Bike", HourlyMultiplier: 0.5},
				{VehicleType: "Hatchback", HourlyMultiplier: 1.0},
				{VehicleType: "Sedan", HourlyMultiplier: 1.2},
			},
			OperatingHours: weekdays("00:00", "23:59"),
		},
		{
			Name:           "Cyber Towers Parking",
			Address:        "Cyber Towers, HITEC City",
			City:           "Hyderabad",
			State:          "Telangana",
			ZipCode:        "500081",
			Coordinates:    domain.Coordinates{Latitude: 17.4504, Longitude: 78.3808},
			TotalSpots:     80,
			AvailableSpots: 80,
			HourlyRate:     60,
			DailyRate:      400,
			Amenities:      []string{"covered", "ev_charging", "valet"},
			VehicleTypeRates: []domain.VehicleTypeRate{
				{VehicleType: "Hatchback", HourlyMultiplier: 1.0},
				{VehicleType: "Sedan", HourlyMultiplier: 1.2},
				{VehicleType: "SUV", HourlyMultiplier: 1.5},
				{VehicleType: "Luxury", HourlyMultiplier: 2.0},
			},
			OperatingHours: weekdays("07:00", "22:00"),
		},
	}
	for _, f := range facilities {
		f.ID = id(f.Name)
		f.Status = domain.FacilityStatusActive
		f.CreatedAt = now
		f.UpdatedAt = now
	}
	return facilities
}
