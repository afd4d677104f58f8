package mongostore

import (
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addressDoc struct {
	AddressLine1 string `bson:"addressLine1,omitempty"`
	AddressLine2 string `bson:"addressLine2,omitempty"`
	City         string `bson:"city,omitempty"`
	ZipCode      string `bson:"zipCode,omitempty"`
}

type authenticationDoc struct {
	Password string `bson:"password"`
}

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	PhoneNumber    string             `bson:"phoneNumber,omitempty"`
	Authentication authenticationDoc  `bson:"authentication"`
	Role           string             `bson:"role"`
	Address        addressDoc         `bson:"address"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func newUserDoc(u *user.User) (*userDoc, error) {
	oid, err := parseID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDoc{
		ID:             oid,
		Email:          u.Email,
		Name:           u.Name,
		PhoneNumber:    u.PhoneNumber,
		Authentication: authenticationDoc{Password: u.PasswordHash},
		Role:           string(u.Role),
		Address: addressDoc{
			AddressLine1: u.Address.AddressLine1,
			AddressLine2: u.Address.AddressLine2,
			City:         u.Address.City,
			ZipCode:      u.Address.ZipCode,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func (d *userDoc) toDomain() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PhoneNumber:  d.PhoneNumber,
		PasswordHash: d.Authentication.Password,
		Role:         user.Role(d.Role),
		Address: user.Address{
			AddressLine1: d.Address.AddressLine1,
			AddressLine2: d.Address.AddressLine2,
			City:         d.Address.City,
			ZipCode:      d.Address.ZipCode,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type productDoc struct {
	ID               primitive.ObjectID   `bson:"_id"`
	Name             string               `bson:"name"`
	Description      string               `bson:"description"`
	Price            primitive.Decimal128 `bson:"price"`
	Quantity         int                  `bson:"quantity"`
	MainImage        string               `bson:"mainImage"`
	AdditionalImages []string             `bson:"additionalImages"`
	IsListed         bool                 `bson:"isListed"`
	ListedBy         primitive.ObjectID   `bson:"listedBy"`
	CreatedAt        time.Time            `bson:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt"`
}

func newProductDoc(p *product.Product) (*productDoc, error) {
	oid, err := parseID(p.ID)
	if err != nil {
		return nil, err
	}
	listedBy, err := parseID(p.ListedBy)
	if err != nil {
		return nil, err
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	images := p.AdditionalImages
	if images == nil {
		images = []string{}
	}
	return &productDoc{
		ID:               oid,
		Name:             p.Name,
		Description:      p.Description,
		Price:            price,
		Quantity:         p.Quantity,
		MainImage:        p.MainImage,
		AdditionalImages: images,
		IsListed:         p.IsListed,
		ListedBy:         listedBy,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}

func (d *productDoc) toDomain() (*product.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &product.Product{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Description:      d.Description,
		Price:            price,
		Quantity:         d.Quantity,
		MainImage:        d.MainImage,
		AdditionalImages: d.AdditionalImages,
		IsListed:         d.IsListed,
		ListedBy:         d.ListedBy.Hex(),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

type orderLineDoc struct {
	ProductID primitive.ObjectID   `bson:"productId"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

type orderDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	CustomerID   primitive.ObjectID   `bson:"customerId"`
	OrderDetails []orderLineDoc       `bson:"orderDetails"`
	TotalAmount  primitive.Decimal128 `bson:"totalAmount"`
	PaymentID    string               `bson:"paymentId"`
	CreatedAt    time.Time            `bson:"createdAt"`
}

func newOrderDoc(o *order.Order) (*orderDoc, error) {
	oid, err := parseID(o.ID)
	if err != nil {
		return nil, err
	}
	customer, err := parseID(o.CustomerID)
	if err != nil {
		return nil, err
	}
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return nil, err
	}
	lines := make([]orderLineDoc, 0, len(o.Lines))
	for _, l := range o.Lines {
		pid, err := parseID(l.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := toDecimal128(l.Price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, orderLineDoc{ProductID: pid, Quantity: l.Quantity, Price: price})
	}
	return &orderDoc{
		ID:           oid,
		CustomerID:   customer,
		OrderDetails: lines,
		TotalAmount:  total,
		PaymentID:    o.PaymentID,
		CreatedAt:    o.CreatedAt,
	}, nil
}

func (d *orderDoc) toDomain() (*order.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	lines := make([]order.Line, 0, len(d.OrderDetails))
	for _, l := range d.OrderDetails {
		price, err := fromDecimal128(l.Price)
		if err != nil {
			return nil, err
		}
		lines = append(lines, order.Line{ProductID: l.ProductID.Hex(), Quantity: l.Quantity, Price: price})
	}
	return &order.Order{
		ID:          d.ID.Hex(),
		CustomerID:  d.CustomerID.Hex(),
		Lines:       lines,
		TotalAmount: total,
		PaymentID:   d.PaymentID,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type deliveryDoc struct {
	ID               primitive.ObjectID `bson:"_id"`
	OrderID          primitive.ObjectID `bson:"orderId"`
	DeliveryPersonID primitive.ObjectID `bson:"deliveryPersonId"`
	DeliveryStatus   string             `bson:"deliveryStatus"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func newDeliveryDoc(d *delivery.Delivery) (*deliveryDoc, error) {
	oid, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := parseID(d.OrderID)
	if err != nil {
		return nil, err
	}
	person, err := parseID(d.DeliveryPersonID)
	if err != nil {
		return nil, err
	}
	return &deliveryDoc{
		ID:               oid,
		OrderID:          orderID,
		DeliveryPersonID: person,
		DeliveryStatus:   string(d.Status),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func (d *deliveryDoc) toDomain() *delivery.Delivery {
	return &delivery.Delivery{
		ID:               d.ID.Hex(),
		OrderID:          d.OrderID.Hex(),
		DeliveryPersonID: d.DeliveryPersonID.Hex(),
		Status:           delivery.Status(d.DeliveryStatus),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("mongostore: encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("mongostore: decode decimal %s: %w", v, err)
	}
	return d, nil
}
