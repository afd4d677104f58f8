package httppresentation

import (
	"net/http"

	applisting "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/listing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createListingRequest struct {
	Name             string           `json:"name" validate:"required"`
	Description      string           `json:"description" validate:"required"`
	Price            *decimal.Decimal `json:"price" validate:"required"`
	Quantity         *int             `json:"quantity" validate:"required,gte=0"`
	MainImage        string           `json:"mainImage" validate:"required"`
	AdditionalImages []string         `json:"additionalImages"`
}

type updatePriceRequest struct {
	UpdatedPrice *decimal.Decimal `json:"updatedPrice" validate:"required"`
}

type listingsData struct {
	Length   int           `json:"length"`
	Listings []listingView `json:"listings"`
}

type listingData struct {
	Listing listingView `json:"listing"`
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Listings.ListListings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, listingsData{Length: len(ps), Listings: newListingViews(ps)})
}

func (s *Server) handleListingsByUser(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Listings.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, listingsData{Length: len(ps), Listings: newListingViews(ps)})
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Listings.CreateListing(r.Context(), callerFromContext(r.Context()), applisting.CreateListingInput{
		Name:             req.Name,
		Description:      req.Description,
		Price:            *req.Price,
		Quantity:         *req.Quantity,
		MainImage:        req.MainImage,
		AdditionalImages: req.AdditionalImages,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, listingData{Listing: newListingView(p)})
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Listings.UpdatePrice(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"), *req.UpdatedPrice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, listingData{Listing: newListingView(p)})
}

func (s *Server) handleUnlist(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Listings.Unlist(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
