// Seeds the database with a demo host, a demo guest, sample listings
// and one pending booking, so the payment flow can be exercised end to
// end against a fresh database.
package main

import (
	"context"
	"log"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/database"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var sampleListings = []struct {
	title       string
	description string
	location    string
	price       float64
}{
	{"Lakeside Cabin", "Quiet two-bed cabin right on the shore.", "Bahir Dar", 85.00},
	{"Old Town Loft", "Bright loft above the market square.", "Addis Ababa", 120.00},
	{"Garden Studio", "Self-contained studio with a private garden.", "Hawassa", 60.00},
	{"Hilltop Villa", "Four bedrooms, pool, sweeping valley views.", "Lalibela", 200.00},
	{"City Rooftop Flat", "Compact flat with a rooftop terrace.", "Dire Dawa", 75.00},
}

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := repository.NewRepository(db, logger)
	ctx := context.Background()

	host := ensureUser(ctx, repos, logger, "demo_host", "host@example.com", "Dawit", "Haile", entity.RoleHost)
	guest := ensureUser(ctx, repos, logger, "demo_guest", "guest@example.com", "Sara", "Bekele", entity.RoleGuest)

	now := time.Now()
	var firstListing *entity.Listing
	for _, sample := range sampleListings {
		listing := &entity.Listing{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Title:         sample.title,
			Description:   sample.description,
			Location:      sample.location,
			PricePerNight: sample.price,
			HostID:        host.ID,
		}
		if err := repos.Listing.Create(ctx, listing); err != nil {
			logger.Fatal("Failed to seed listing", zap.Error(err), zap.String("title", sample.title))
		}
		if firstListing == nil {
			firstListing = listing
		}
	}

	checkIn := now.AddDate(0, 0, 7)
	checkOut := checkIn.AddDate(0, 0, 3)
	nights := checkOut.Sub(checkIn).Hours() / 24

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ListingID:  firstListing.ID,
		GuestID:    guest.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: firstListing.PricePerNight * nights,
		Status:     entity.BookingStatusPending,
	}
	if err := repos.Booking.Create(ctx, booking); err != nil {
		logger.Fatal("Failed to seed booking", zap.Error(err))
	}

	// A ready-to-use session so the payment endpoints can be called
	// with "Authorization: Bearer <token>" right after seeding.
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    guest.ID,
		Token:     uuid.New(),
		ExpiresAt: now.AddDate(0, 0, 7),
	}
	if err := repos.Session.Create(ctx, session); err != nil {
		logger.Fatal("Failed to seed session", zap.Error(err))
	}

	logger.Info("Database seeded",
		zap.Int("listings", len(sampleListings)),
		zap.String("booking_id", booking.ID.String()),
		zap.String("guest_id", guest.ID.String()),
		zap.String("guest_session_token", session.Token.String()),
	)
}

func ensureUser(ctx context.Context, repos *repository.Repository, logger *zap.Logger, username, email, first, last string, role entity.UserRole) *entity.User {
	existing, err := repos.User.FindByUsername(ctx, username)
	if err != nil {
		logger.Fatal("Failed to look up user", zap.Error(err), zap.String("username", username))
	}
	if existing != nil {
		return existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Role:         role,
		IsActive:     true,
	}
	if err := repos.User.Create(ctx, user); err != nil {
		logger.Fatal("Failed to create user", zap.Error(err), zap.String("username", username))
	}
	return user
}
