package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/SwarupDevkota/ghumna-sub000/internal/hotel"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/user"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

// seed creates an admin account and a pending hotel owned by a regular user,
// enough to walk the review flow locally.
func main() {
	var (
		adminEmail = flag.String("admin-email", "admin@ghumna.local", "admin login")
		ownerEmail = flag.String("owner-email", "owner@ghumna.local", "hotel owner login")
		password   = flag.String("password", "password123", "password for both seeded accounts")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	if err := db.Migrate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	users := user.NewRepository(pool)
	admin, err := ensureUser(ctx, users, user.NewUser{Name: "Admin", Email: *adminEmail, PasswordHash: string(hash), Role: role.Admin})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed admin: %v\n", err)
		os.Exit(1)
	}
	owner, err := ensureUser(ctx, users, user.NewUser{Name: "Hotel Owner", Email: *ownerEmail, PasswordHash: string(hash), Role: role.User})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed owner: %v\n", err)
		os.Exit(1)
	}

	hotels := hotel.NewRepository(pool)
	h, err := hotels.Create(ctx, owner.ID, hotel.Submission{
		Name:        "Phewa Lakeside Lodge",
		Email:       *ownerEmail,
		Address:     "Lakeside Road 6",
		City:        "Pokhara",
		Description: "Seeded sample listing awaiting review.",
		RoomTypes:   []string{"single", "double"},
		Prices: map[string]decimal.Decimal{
			"single": decimal.NewFromInt(1800),
			"double": decimal.NewFromInt(3200),
		},
		RoomsAvailable: map[string]int{"single": 5, "double": 3},
		Amenities:      []string{"wifi", "breakfast"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed hotel: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seed complete")
	fmt.Printf("- admin: %s (%s)\n", admin.Email, admin.ID)
	fmt.Printf("- owner: %s (%s)\n", owner.Email, owner.ID)
	fmt.Printf("- hotel: %s status=%s\n", h.ID, h.Status)
	fmt.Printf("- approve with: POST /api/hotels/%s/approve (as admin)\n", h.ID)
}

// ensureUser makes the command re-runnable.
func ensureUser(ctx context.Context, users *user.Repository, in user.NewUser) (*user.User, error) {
	u, err := users.Create(ctx, in)
	if errors.Is(err, user.ErrEmailTaken) {
		return users.GetByEmail(ctx, in.Email)
	}
	return u, err
}
