package order

// QueryOrdersModel filters order lookups.
type QueryOrdersModel struct {
	Ids             []int64
	TrackingNumbers []string
	CustomerIds     []int64
	Statuses        []Status
	Limit           int
	Offset          int
}
