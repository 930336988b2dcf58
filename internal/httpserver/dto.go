package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/cart"
	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/service"
)

const (
	unknownCardName  = "Unknown Card"
	placeholderImage = "/placeholder-image.jpg"
)

// money renders decimals with exactly two places so clients never see float drift.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

type cardResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Rarity    string    `json:"rarity"`
	Price     string    `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCard(c models.Card) cardResponse {
	return cardResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Rarity:    string(c.Rarity),
		Price:     money(c.Price),
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
	}
}

func toCards(cs []models.Card) []cardResponse {
	out := make([]cardResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCard(c))
	}
	return out
}

type searchResponse struct {
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Items []cardResponse `json:"items"`
}

type inventoryResponse struct {
	ItemID     uint      `json:"itemId"`
	Quantity   int       `json:"quantity"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Rarity     string    `json:"rarity"`
	Image      string    `json:"image"`
	Price      string    `json:"price"`
	ObtainedAt time.Time `json:"obtainedAt"`
}

func toInventory(rows []repo.InventoryRow) []inventoryResponse {
	out := make([]inventoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventoryResponse{
			ItemID:     r.CardID,
			Quantity:   r.Quantity,
			Name:       r.Name,
			Type:       string(r.Type),
			Rarity:     string(r.Rarity),
			Image:      r.Image,
			Price:      money(r.Price),
			ObtainedAt: r.ObtainedAt,
		})
	}
	return out
}

type transactionItemResponse struct {
	ID              uint   `json:"id"`
	CardID          uint   `json:"cardId"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"priceAtPurchase"`
	Name            string `json:"name"`
	Image           string `json:"image"`
}

type transactionResponse struct {
	ID         string                    `json:"id"`
	TotalPrice string                    `json:"totalPrice"`
	Status     string                    `json:"status"`
	CreatedAt  time.Time                 `json:"createdAt"`
	SettledAt  *time.Time                `json:"settledAt,omitempty"`
	Items      []transactionItemResponse `json:"items"`
}

func toTransactions(orders []models.Order) []transactionResponse {
	out := make([]transactionResponse, 0, len(orders))
	for _, o := range orders {
		items := make([]transactionItemResponse, 0, len(o.Items))
		for _, it := range o.Items {
			name, image := unknownCardName, placeholderImage
			if it.Card != nil {
				name, image = it.Card.Name, it.Card.Image
			}
			items = append(items, transactionItemResponse{
				ID:              it.ID,
				CardID:          it.CardID,
				Quantity:        it.Quantity,
				PriceAtPurchase: money(it.PriceAtPurchase),
				Name:            name,
				Image:           image,
			})
		}
		out = append(out, transactionResponse{
			ID:         o.ID.String(),
			TotalPrice: money(o.TotalPrice),
			Status:     string(o.Status),
			CreatedAt:  o.CreatedAt,
			SettledAt:  o.SettledAt,
			Items:      items,
		})
	}
	return out
}

type dayStatsResponse struct {
	Date          string `json:"date"`
	Count         int    `json:"count"`
	TotalQuantity int    `json:"totalQuantity"`
	Revenue       string `json:"revenue"`
}

func toStats(days []service.DayStats) []dayStatsResponse {
	out := make([]dayStatsResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayStatsResponse{
			Date:          d.Date,
			Count:         d.Count,
			TotalQuantity: d.TotalQuantity,
			Revenue:       money(d.Revenue),
		})
	}
	return out
}

type userResponse struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

var guest = userResponse{Name: "Guest"}

type cartItemResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Count int                `json:"count"`
	Total string             `json:"total"`
}

func toCart(c *cart.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Price:    money(it.Price),
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return cartResponse{Items: items, Count: c.Count(), Total: money(c.Total())}
}
