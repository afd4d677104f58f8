package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type usersData struct {
	Users []userView `json:"users"`
}

type userData struct {
	User userView `json:"user"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.svc.Users.List(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]userView, 0, len(us))
	for _, u := range us {
		views = append(views, newUserView(u))
	}
	writeData(w, http.StatusOK, usersData{Users: views})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, userData{User: newUserView(u)})
}
