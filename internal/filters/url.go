package filters

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
)

// Query parameter names of the deep-link wire format.
const (
	ParamSearch  = "search"
	ParamPage    = "page"
	ParamLimit   = "limit"
	ParamFilters = "filters"
	ParamSort    = "sort"
)

// URLManager maps FilterState to and from flat URL query parameters.
//
// Page 1 and limit 20 are implicit and never encoded, so after a round trip
// they are indistinguishable from "not specified".
type URLManager struct {
	logger *slog.Logger
}

// NewURLManager creates a URLManager. A nil logger uses slog.Default().
func NewURLManager(logger *slog.Logger) *URLManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &URLManager{logger: logger}
}

// ToURLParams encodes state. Conditions and sort travel as JSON arrays.
func (m *URLManager) ToURLParams(state FilterState) url.Values {
	params := url.Values{}

	if state.Search != "" {
		params.Set(ParamSearch, state.Search)
	}
	if state.Page > DefaultPage {
		params.Set(ParamPage, strconv.Itoa(state.Page))
	}
	if state.Limit > 0 && state.Limit != DefaultLimit {
		params.Set(ParamLimit, strconv.Itoa(state.Limit))
	}
	if len(state.Conditions) > 0 {
		if data, err := json.Marshal(state.Conditions); err != nil {
			m.logger.Warn("failed to encode filters for URL", slog.String("error", err.Error()))
		} else {
			params.Set(ParamFilters, string(data))
		}
	}
	if len(state.Sort) > 0 {
		if data, err := json.Marshal(state.Sort); err != nil {
			m.logger.Warn("failed to encode sort for URL", slog.String("error", err.Error()))
		} else {
			params.Set(ParamSort, string(data))
		}
	}

	return params
}

// FromURLParams decodes params. Malformed filters, sort, page or limit
// values are logged and ignored; decoding never fails.
func (m *URLManager) FromURLParams(params url.Values) FilterState {
	state := FilterState{
		Conditions: []FilterCondition{},
		Sort:       []SortCondition{},
	}

	if search := params.Get(ParamSearch); search != "" {
		state.Search = search
	}
	state.Page = m.parseInt(params, ParamPage)
	state.Limit = m.parseInt(params, ParamLimit)

	if raw := params.Get(ParamFilters); raw != "" {
		var conditions []FilterCondition
		if err := json.Unmarshal([]byte(raw), &conditions); err != nil {
			m.logger.Warn("failed to parse filters from URL",
				slog.String("error", err.Error()),
				slog.String("filters", raw),
			)
		} else if conditions != nil {
			state.Conditions = conditions
		}
	}

	if raw := params.Get(ParamSort); raw != "" {
		var sort []SortCondition
		if err := json.Unmarshal([]byte(raw), &sort); err != nil {
			m.logger.Warn("failed to parse sort from URL",
				slog.String("error", err.Error()),
				slog.String("sort", raw),
			)
		} else if sort != nil {
			state.Sort = sort
		}
	}

	return state
}

// URL returns base with the encoded state appended as a query string, or base
// unchanged when the state encodes to nothing.
func (m *URLManager) URL(base string, state FilterState) string {
	query := m.ToURLParams(state).Encode()
	if query == "" {
		return base
	}
	return base + "?" + query
}

func (m *URLManager) parseInt(params url.Values, key string) int {
	raw := params.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		m.logger.Warn("ignoring non-integer URL parameter",
			slog.String("param", key),
			slog.String("value", raw),
		)
		return 0
	}
	return n
}
