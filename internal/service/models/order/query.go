package order

// QueryOrdersModel represents filter parameters for querying orders.
// ConsolidatedOnly limits results to buyer-facing orders (shop unset).
type QueryOrdersModel struct {
	Ids              []int64 `json:"ids,omitempty"`
	UserIds          []int64 `json:"userIds,omitempty"`
	ShopIds          []int64 `json:"shopIds,omitempty"`
	ConsolidatedOnly bool    `json:"consolidatedOnly,omitempty"`
	Limit            int     `json:"limit,omitempty"`
	Offset           int     `json:"offset,omitempty"`
}
