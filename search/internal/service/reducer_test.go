package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alturino/eats/search/pkg/request"
)

func TestReduceScenario(t *testing.T) {
	state := request.DefaultSearchState()
	assert.Equal(t, request.SearchState{
		SearchQuery:      "",
		Page:             1,
		SelectedCuisines: []string{},
		SortOption:       request.SortBestMatch,
	}, state)

	state = Reduce(state, SetPage{Page: 3})
	assert.Equal(t, request.SearchState{
		SearchQuery:      "",
		Page:             3,
		SelectedCuisines: []string{},
		SortOption:       request.SortBestMatch,
	}, state)

	state = Reduce(state, SetCuisines{Cuisines: []string{"italian"}})
	assert.Equal(t, request.SearchState{
		SearchQuery:      "",
		Page:             1,
		SelectedCuisines: []string{"italian"},
		SortOption:       request.SortBestMatch,
	}, state)
}

func TestReduceResetsPage(t *testing.T) {
	prior := request.SearchState{
		SearchQuery:      "pizza",
		Page:             7,
		SelectedCuisines: []string{"italian", "thai"},
		SortOption:       request.SortDeliveryPrice,
	}
	tests := []struct {
		name     string
		action   Action
		expected request.SearchState
	}{
		{
			name:   "given sort option should reset page",
			action: SetSort{Option: request.SortEstimatedDeliveryTime},
			expected: request.SearchState{
				SearchQuery:      "pizza",
				Page:             1,
				SelectedCuisines: []string{"italian", "thai"},
				SortOption:       request.SortEstimatedDeliveryTime,
			},
		},
		{
			name:   "given cuisines should deduplicate and reset page",
			action: SetCuisines{Cuisines: []string{"thai", "thai", "", "indian"}},
			expected: request.SearchState{
				SearchQuery:      "pizza",
				Page:             1,
				SelectedCuisines: []string{"thai", "indian"},
				SortOption:       request.SortDeliveryPrice,
			},
		},
		{
			name:   "given nil cuisines should clear them and reset page",
			action: SetCuisines{},
			expected: request.SearchState{
				SearchQuery:      "pizza",
				Page:             1,
				SelectedCuisines: []string{},
				SortOption:       request.SortDeliveryPrice,
			},
		},
		{
			name:   "given query should reset page",
			action: SetQuery{Query: "sushi"},
			expected: request.SearchState{
				SearchQuery:      "sushi",
				Page:             1,
				SelectedCuisines: []string{"italian", "thai"},
				SortOption:       request.SortDeliveryPrice,
			},
		},
		{
			name:   "given reset should clear query and reset page",
			action: Reset{},
			expected: request.SearchState{
				SearchQuery:      "",
				Page:             1,
				SelectedCuisines: []string{"italian", "thai"},
				SortOption:       request.SortDeliveryPrice,
			},
		},
		{
			name:   "given page should keep every other field",
			action: SetPage{Page: 4},
			expected: request.SearchState{
				SearchQuery:      "pizza",
				Page:             4,
				SelectedCuisines: []string{"italian", "thai"},
				SortOption:       request.SortDeliveryPrice,
			},
		},
		{
			name:   "given page below one should clamp to one",
			action: SetPage{Page: -2},
			expected: request.SearchState{
				SearchQuery:      "pizza",
				Page:             1,
				SelectedCuisines: []string{"italian", "thai"},
				SortOption:       request.SortDeliveryPrice,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Reduce(prior, tt.action)
			assert.Equal(t, tt.expected, actual, "state should be equal to expected")
			assert.Equal(t, []string{"italian", "thai"}, prior.SelectedCuisines,
				"prior state should not be mutated")
		})
	}
}
