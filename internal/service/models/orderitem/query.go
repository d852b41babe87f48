package orderitem

// QueryOrderItemsModel filters order item lookups.
type QueryOrderItemsModel struct {
	Ids        []int64
	OrderIds   []int64
	ServiceIds []int64
}
