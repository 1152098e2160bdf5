package service

import (
	"github.com/Alturino/eats/search/pkg/request"
)

// Action is one of SetSort, SetCuisines, SetQuery, Reset or SetPage.
type Action interface {
	Name() string
	apply(state request.SearchState) request.SearchState
}

type SetSort struct{ Option request.SortOption }

type SetCuisines struct{ Cuisines []string }

type SetQuery struct{ Query string }

type Reset struct{}

type SetPage struct{ Page int }

func (SetSort) Name() string     { return "setSortOption" }
func (SetCuisines) Name() string { return "setSelectedCuisines" }
func (SetQuery) Name() string    { return "setSearchQuery" }
func (Reset) Name() string       { return "resetSearch" }
func (SetPage) Name() string     { return "setPage" }

func (a SetSort) apply(s request.SearchState) request.SearchState {
	s.SortOption = a.Option
	return s
}

func (a SetCuisines) apply(s request.SearchState) request.SearchState {
	s.SelectedCuisines = request.CuisineSet(a.Cuisines)
	return s
}

func (a SetQuery) apply(s request.SearchState) request.SearchState {
	s.SearchQuery = a.Query
	return s
}

func (Reset) apply(s request.SearchState) request.SearchState {
	s.SearchQuery = ""
	return s
}

func (a SetPage) apply(s request.SearchState) request.SearchState {
	s.Page = max(a.Page, 1)
	return s
}

// Reduce applies action to state. Every action except SetPage changes the
// result set and therefore sends the state back to page 1.
func Reduce(state request.SearchState, action Action) request.SearchState {
	state.SelectedCuisines = append([]string(nil), state.SelectedCuisines...)
	next := action.apply(state)
	if _, paging := action.(SetPage); !paging {
		next.Page = 1
	}
	if next.SelectedCuisines == nil {
		next.SelectedCuisines = []string{}
	}
	return next
}
