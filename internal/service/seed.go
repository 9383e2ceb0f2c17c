package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/festipay/festipay/internal/models"
)

// superAdminCardID is the pre-linked card of the seeded super admin.
const superAdminCardID = "super-admin-card-001"

// seed installs the sample catalog, cards and staff accounts on a cold
// start. Callers must hold l.mu (NewLedger runs it before the ledger is
// shared). Seed passwords are hashed like any other.
func (l *Ledger) seed() error {
	l.products = []models.Product{
		{ID: "prod-1", Name: "Beer", Price: 5},
		{ID: "prod-2", Name: "Vodka Shot", Price: 8},
		{ID: "prod-3", Name: "Cocktail", Price: 12},
		{ID: "prod-4", Name: "Energy Drink", Price: 6},
		{ID: "prod-5", Name: "Water", Price: 3},
		{ID: "prod-6", Name: "Jäger Bomb", Price: 10},
	}

	l.cards = []models.Card{
		{ID: superAdminCardID, Balance: 10000, Status: models.CardActive},
		{ID: "user-123", Balance: 100, Status: models.CardActive},
		{ID: "user-456", Balance: 35, Status: models.CardActive},
	}

	seeds := []struct {
		id       string
		username string
		password string
		email    string
		cardIDs  []string
		role     models.Role
	}{
		{"u-super", "superadmin", "superadmin123", "super@event.com", []string{superAdminCardID}, models.RoleSuperAdmin},
		{"u-admin1", "admin1", "admin123", "admin1@event.com", []string{}, models.RoleAdmin},
		{"u-admin2", "admin2", "admin123", "admin2@event.com", []string{}, models.RoleAdmin},
	}
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		l.users = append(l.users, models.User{
			ID:           s.id,
			Username:     s.username,
			PasswordHash: hash,
			CardIDs:      s.cardIDs,
			Role:         s.role,
			Email:        s.email,
		})
	}
	return nil
}
