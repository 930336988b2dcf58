package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CardType string

const (
	CardTypeCharacter CardType = "character"
	CardTypeWeapon    CardType = "weapon"
	CardTypeGadget    CardType = "gadget"
)

func (t CardType) Valid() bool {
	switch t {
	case CardTypeCharacter, CardTypeWeapon, CardTypeGadget:
		return true
	}
	return false
}

type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityLegendary:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSettled OrderStatus = "settled"
)

// User is created only by the identity webhook. ExternalID is the identity provider's user id.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"               json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null"               json:"externalId"`
	Email      string    `gorm:"uniqueIndex;not null"               json:"email"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Card struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name      string          `gorm:"not null"                          json:"name"`
	Type      CardType        `gorm:"type:varchar(16);not null"         json:"type"`
	Rarity    Rarity          `gorm:"type:varchar(16);not null"         json:"rarity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"price"`
	Image     string          `gorm:"not null"                          json:"image"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (Card) TableName() string { return "cards" }

// Order is a checkout attempt. Inventory is credited exactly once, when it moves from pending to settled.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;index;not null"          json:"userId"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"totalPrice"`
	Status           OrderStatus     `gorm:"type:varchar(16);index;not null"   json:"status"`
	PaymentSessionID *string         `gorm:"index"                             json:"-"`
	SettledAt        *time.Time      `json:"settledAt,omitempty"`
	CreatedAt        time.Time       `gorm:"index"                             json:"createdAt"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID"                json:"items"`
}

func (Order) TableName() string { return "transactions" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;index;not null"          json:"-"`
	CardID          uint            `gorm:"index;not null"                    json:"cardId"`
	Quantity        int             `gorm:"not null;check:quantity > 0"       json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"priceAtPurchase"`
	Card            *Card           `gorm:"foreignKey:CardID"                 json:"-"`
}

func (OrderItem) TableName() string { return "transaction_items" }

// UserCard is one inventory entry. (UserID, CardID) is unique.
type UserCard struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                         json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_cards_user_card" json:"userId"`
	CardID     uint      `gorm:"not null;uniqueIndex:idx_user_cards_user_card"    json:"cardId"`
	Quantity   int       `gorm:"not null;check:quantity > 0"                      json:"quantity"`
	ObtainedAt time.Time `gorm:"not null"                                         json:"obtainedAt"`
}

func (UserCard) TableName() string { return "user_cards" }

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{&User{}, &Card{}, &Order{}, &OrderItem{}, &UserCard{}}
}
