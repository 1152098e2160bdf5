package response

import (
	"github.com/Alturino/eats/restaurant/pkg/response"
	"github.com/Alturino/eats/search/pkg/request"
)

type ViewState string

const (
	ViewLoading   ViewState = "loading"
	ViewNoResults ViewState = "noResults"
	ViewPopulated ViewState = "populated"
)

type SearchView struct {
	City       string                 `json:"city"`
	State      request.SearchState    `json:"searchState"`
	ViewState  ViewState              `json:"viewState"`
	Generation uint64                 `json:"generation"`
	Results    *response.SearchResult `json:"results,omitempty"`
}
