// Package cart holds each signed-in user's pending selection between page loads.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
)

// MaxQuantity bounds a single line so a cart can always be checked out.
const MaxQuantity = 1000

var (
	ErrValidation = errors.New("validation")
	ErrNotInCart  = errors.New("item not in cart")
	ErrConflict   = errors.New("cart changed concurrently")
)

// deductAttempts bounds the compare-and-swap retries in Deduct.
const deductAttempts = 5

type Item struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

// without returns a copy of c with the quantities in taken subtracted. Lines that drop to
// zero are removed.
func (c *Cart) without(taken *Cart) *Cart {
	out := &Cart{Items: make([]Item, 0, len(c.Items))}
	for _, it := range c.Items {
		if i := taken.find(it.ID); i >= 0 {
			it.Quantity -= taken.Items[i].Quantity
		}
		if it.Quantity > 0 {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) find(id uint) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Storage persists serialized carts by key. Load returns nil, nil for a missing key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error)
}

type CardLookup interface {
	GetCard(ctx context.Context, id uint) (*models.Card, error)
}

type Service struct {
	Storage Storage
	Cards   CardLookup
}

func key(owner string) string { return "cart:" + owner }

func (s *Service) Get(ctx context.Context, owner string) (*Cart, error) {
	c, _, err := s.load(ctx, owner)
	return c, err
}

func (s *Service) load(ctx context.Context, owner string) (*Cart, []byte, error) {
	raw, err := s.Storage.Load(ctx, key(owner))
	if err != nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	c, err := decode(raw)
	return c, raw, err
}

func decode(raw []byte) (*Cart, error) {
	c := &Cart{Items: []Item{}}
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, owner string, c *Cart) error {
	if len(c.Items) == 0 {
		return s.Storage.Delete(ctx, key(owner))
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.Storage.Save(ctx, key(owner), raw)
}

// AddItem adds quantity of a catalog card, merging with an existing line. Name, price and
// image come from the catalog, never from the client.
func (s *Service) AddItem(ctx context.Context, owner string, cardID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must not exceed %d", ErrValidation, MaxQuantity)
	}
	card, err := s.Cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if i := c.find(cardID); i >= 0 {
		if c.Items[i].Quantity+quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: quantity must not exceed %d", ErrValidation, MaxQuantity)
		}
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, Item{
			ID:       card.ID,
			Name:     card.Name,
			Price:    card.Price,
			Image:    card.Image,
			Quantity: quantity,
		})
	}
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner string, cardID uint, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must not exceed %d", ErrValidation, MaxQuantity)
	}
	c, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	i := c.find(cardID)
	if i < 0 {
		return nil, ErrNotInCart
	}
	if quantity == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, owner string, cardID uint) (*Cart, error) {
	return s.UpdateQuantity(ctx, owner, cardID, 0)
}

func (s *Service) Clear(ctx context.Context, owner string) error {
	return s.Storage.Delete(ctx, key(owner))
}

// Deduct removes the quantities in taken from the owner's stored cart. Items added after
// taken was read stay in the cart.
func (s *Service) Deduct(ctx context.Context, owner string, taken *Cart) error {
	for range deductAttempts {
		cur, raw, err := s.load(ctx, owner)
		if err != nil {
			return err
		}
		var next []byte
		if rest := cur.without(taken); len(rest.Items) > 0 {
			if next, err = json.Marshal(rest); err != nil {
				return fmt.Errorf("encode cart: %w", err)
			}
		}
		ok, err := s.Storage.CompareAndSwap(ctx, key(owner), raw, next)
		if err != nil {
			return fmt.Errorf("update cart: %w", err)
		}
		if ok {
			return nil
		}
	}
	return ErrConflict
}
