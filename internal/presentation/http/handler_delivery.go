package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type assignDeliveryRequest struct {
	DeliveryPersonID string `json:"deliveryPersonId" validate:"required"`
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type assignDeliveryResponse struct {
	Status     string `json:"status"`
	DeliveryID string `json:"deliveryId"`
}

type deliveryData struct {
	Delivery deliveryView `json:"delivery"`
}

type deliveriesData struct {
	Deliveries []deliveryView `json:"deliveries"`
}

func (s *Server) handleAssignDelivery(w http.ResponseWriter, r *http.Request) {
	var req assignDeliveryRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.svc.Deliveries.Assign(r.Context(), chi.URLParam(r, "id"), req.DeliveryPersonID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignDeliveryResponse{Status: statusSuccess, DeliveryID: d.ID})
}

// handleDeliveryStatus looks a delivery up by the id of its order.
func (s *Server) handleDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Deliveries.StatusForOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deliveryData{Delivery: newDeliveryView(d)})
}

func (s *Server) handleDeliveriesForPerson(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Deliveries.ListForPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]deliveryView, 0, len(ds))
	for _, d := range ds {
		views = append(views, newDeliveryView(d))
	}
	writeData(w, http.StatusOK, deliveriesData{Deliveries: views})
}

func (s *Server) handleUpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req updateDeliveryStatusRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.svc.Deliveries.UpdateStatus(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deliveryData{Delivery: newDeliveryView(d)})
}
