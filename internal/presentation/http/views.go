package httppresentation

import (
	"encoding/json"
	"time"

	domdelivery "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Money values are written as JSON numbers with their exact decimal text.
func money(d decimal.Decimal) json.Number { return json.Number(d.String()) }

type listingView struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Price            json.Number `json:"price"`
	Quantity         int         `json:"quantity"`
	MainImage        string      `json:"mainImage"`
	AdditionalImages []string    `json:"additionalImages"`
	IsListed         bool        `json:"isListed"`
	ListedBy         string      `json:"listedBy"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func newListingView(p *domproduct.Product) listingView {
	images := p.AdditionalImages
	if images == nil {
		images = []string{}
	}
	return listingView{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            money(p.Price),
		Quantity:         p.Quantity,
		MainImage:        p.MainImage,
		AdditionalImages: images,
		IsListed:         p.IsListed,
		ListedBy:         p.ListedBy,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func newListingViews(ps []*domproduct.Product) []listingView {
	out := make([]listingView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newListingView(p))
	}
	return out
}

type orderLineView struct {
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type orderView struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId"`
	OrderDetails []orderLineView `json:"orderDetails"`
	TotalAmount  json.Number     `json:"totalAmount"`
	PaymentID    string          `json:"paymentId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func newOrderView(o *domorder.Order) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{ProductID: l.ProductID, Quantity: l.Quantity, Price: money(l.Price)})
	}
	return orderView{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		OrderDetails: lines,
		TotalAmount:  money(o.TotalAmount),
		PaymentID:    o.PaymentID,
		CreatedAt:    o.CreatedAt,
	}
}

type deliveryView struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"orderId"`
	DeliveryPersonID string    `json:"deliveryPersonId"`
	DeliveryStatus   string    `json:"deliveryStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func newDeliveryView(d *domdelivery.Delivery) deliveryView {
	return deliveryView{
		ID:               d.ID,
		OrderID:          d.OrderID,
		DeliveryPersonID: d.DeliveryPersonID,
		DeliveryStatus:   string(d.Status),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type addressView struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
}

// userView never carries the password hash.
type userView struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phoneNumber,omitempty"`
	Role        string       `json:"role"`
	Address     *addressView `json:"address,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func newUserView(u *domuser.User) userView {
	v := userView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
	if u.Address != (domuser.Address{}) {
		v.Address = &addressView{
			AddressLine1: u.Address.AddressLine1,
			AddressLine2: u.Address.AddressLine2,
			City:         u.Address.City,
			ZipCode:      u.Address.ZipCode,
		}
	}
	return v
}
