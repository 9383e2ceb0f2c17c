package service

import (
	"testing"

	"github.com/festipay/festipay/internal/models"
)

func TestCanPerform(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleUser}
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	super := &models.User{ID: "s1", Role: models.RoleSuperAdmin}

	tests := []struct {
		name  string
		actor *models.User
		op    Op
		want  bool
	}{
		{"unauthenticated performs nothing", nil, OpProcessPayment, false},
		{"user cannot run POS", user, OpProcessPayment, false},
		{"user cannot issue", user, OpIssueCard, false},
		{"user may link", user, OpLinkCard, true},
		{"admin runs POS", admin, OpProcessPayment, true},
		{"admin issues cards", admin, OpIssueCard, true},
		{"admin tops up", admin, OpTopUpCard, true},
		{"admin sees card table", admin, OpViewCards, true},
		{"admin cannot correct", admin, OpCorrectBalance, false},
		{"admin cannot transfer", admin, OpTransferCard, false},
		{"admin cannot toggle status", admin, OpUpdateCardStatus, false},
		{"admin cannot manage products", admin, OpManageProducts, false},
		{"admin cannot view stats", admin, OpViewStats, false},
		{"admin resets passwords", admin, OpResetPassword, true},
		{"super admin corrects", super, OpCorrectBalance, true},
		{"super admin transfers", super, OpTransferCard, true},
		{"super admin manages products", super, OpManageProducts, true},
		{"super admin views stats", super, OpViewStats, true},
		{"super admin links", super, OpLinkCard, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPerform(tt.actor, tt.op); got != tt.want {
				t.Errorf("CanPerform(%v, %s) = %v; want %v", tt.actor, tt.op, got, tt.want)
			}
		})
	}
}

func TestCanViewCard(t *testing.T) {
	owner := &models.User{ID: "u1", Role: models.RoleUser, CardIDs: []string{"card-a"}}
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}

	if !CanViewCard(owner, "card-a") {
		t.Error("owner denied their own card")
	}
	if CanViewCard(owner, "card-b") {
		t.Error("user allowed someone else's card")
	}
	if !CanViewCard(admin, "card-b") {
		t.Error("staff denied a card")
	}
	if CanViewCard(nil, "card-a") {
		t.Error("unauthenticated actor allowed a card")
	}
}
