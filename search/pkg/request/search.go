package request

import (
	"fmt"

	inErrors "github.com/Alturino/eats/internal/errors"
)

type SortOption string

const (
	SortBestMatch             SortOption = "bestMatch"
	SortDeliveryPrice         SortOption = "deliveryPrice"
	SortEstimatedDeliveryTime SortOption = "estimatedDeliveryTime"
)

var sortOptions = []SortOption{SortBestMatch, SortDeliveryPrice, SortEstimatedDeliveryTime}

func SortOptions() []SortOption {
	return append([]SortOption(nil), sortOptions...)
}

func ParseSortOption(s string) (SortOption, error) {
	for _, opt := range sortOptions {
		if string(opt) == s {
			return opt, nil
		}
	}
	return "", fmt.Errorf("sortOption=%q with error=%w", s, inErrors.ErrInvalidSortOption)
}

type SearchState struct {
	SearchQuery      string     `json:"searchQuery"`
	Page             int        `json:"page"`
	SelectedCuisines []string   `json:"selectedCuisines"`
	SortOption       SortOption `json:"sortOption"`
}

func DefaultSearchState() SearchState {
	return SearchState{
		SearchQuery:      "",
		Page:             1,
		SelectedCuisines: []string{},
		SortOption:       SortBestMatch,
	}
}

// CuisineSet deduplicates cuisines keeping first-seen order and drops blanks.
func CuisineSet(cuisines []string) []string {
	set := make([]string, 0, len(cuisines))
	seen := make(map[string]struct{}, len(cuisines))
	for _, cuisine := range cuisines {
		if cuisine == "" {
			continue
		}
		if _, ok := seen[cuisine]; ok {
			continue
		}
		seen[cuisine] = struct{}{}
		set = append(set, cuisine)
	}
	return set
}

type SetSearchQuery struct {
	SearchQuery string `json:"searchQuery"`
}

type SetSortOption struct {
	SortOption string `validate:"required,sort_option" json:"sortOption"`
}

type SetSelectedCuisines struct {
	SelectedCuisines []string `validate:"dive,required" json:"selectedCuisines"`
}

type SetPage struct {
	Page int `validate:"gte=1" json:"page"`
}
