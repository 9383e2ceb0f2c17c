package service

import (
	"slices"

	"github.com/festipay/festipay/internal/models"
)

// Op names a gated operation for the authorization policy.
type Op string

const (
	OpIssueCard        Op = "issue_card"
	OpTopUpCard        Op = "top_up_card"
	OpProcessPayment   Op = "process_payment"
	OpCorrectBalance   Op = "correct_balance"
	OpTransferCard     Op = "transfer_card"
	OpUpdateCardStatus Op = "update_card_status"
	OpLinkCard         Op = "link_card"
	OpManageProducts   Op = "manage_products"
	OpResetPassword    Op = "reset_password"
	OpViewCards        Op = "view_cards"
	OpViewStats        Op = "view_stats"
)

// permissions is the single authorization matrix: staff roles run the
// point of sale, only the super admin touches per-card administrative
// detail, product management, reset handling and statistics; plain users
// may link cards (to themselves only, enforced in LinkCard).
var permissions = map[Op][]models.Role{
	OpIssueCard:        {models.RoleAdmin, models.RoleSuperAdmin},
	OpTopUpCard:        {models.RoleAdmin, models.RoleSuperAdmin},
	OpProcessPayment:   {models.RoleAdmin, models.RoleSuperAdmin},
	OpCorrectBalance:   {models.RoleSuperAdmin},
	OpTransferCard:     {models.RoleSuperAdmin},
	OpUpdateCardStatus: {models.RoleSuperAdmin},
	OpLinkCard:         {models.RoleUser, models.RoleSuperAdmin},
	OpManageProducts:   {models.RoleSuperAdmin},
	OpResetPassword:    {models.RoleAdmin, models.RoleSuperAdmin},
	OpViewCards:        {models.RoleAdmin, models.RoleSuperAdmin},
	OpViewStats:        {models.RoleSuperAdmin},
}

// CanPerform reports whether the actor's role allows the operation.
// A nil actor is unauthenticated and may perform no gated operation.
func CanPerform(actor *models.User, op Op) bool {
	if actor == nil {
		return false
	}
	return slices.Contains(permissions[op], actor.Role)
}

// CanViewCard reports whether the actor may see the card's balance and
// history: staff see every card, users only their own linked cards.
func CanViewCard(actor *models.User, cardID string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperAdmin {
		return true
	}
	return slices.Contains(actor.CardIDs, cardID)
}
