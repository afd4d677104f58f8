package httppresentation

import (
	"net/http"

	apporder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/order"
	"github.com/go-chi/chi/v5"
)

type orderLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// Presence of orderDetails and paymentId is checked by the order service.
type createOrderRequest struct {
	OrderDetails []orderLineRequest `json:"orderDetails" validate:"dive"`
	PaymentID    string             `json:"paymentId"`
}

type createOrderResponse struct {
	Status      string `json:"status"`
	OrderID     string `json:"orderId"`
	TotalAmount string `json:"totalAmount"`
}

type orderData struct {
	Order orderView `json:"order"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	lines := make([]apporder.LineInput, 0, len(req.OrderDetails))
	for _, l := range req.OrderDetails {
		lines = append(lines, apporder.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := s.svc.Orders.CreateOrder(r.Context(), callerFromContext(r.Context()), apporder.CreateOrderInput{
		Lines:     lines,
		PaymentID: req.PaymentID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{
		Status:      statusSuccess,
		OrderID:     res.OrderID,
		TotalAmount: res.TotalAmount.String(),
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Orders.GetOrder(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, orderData{Order: newOrderView(o)})
}
