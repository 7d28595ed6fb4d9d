package domain

import (
	"strconv"
	"strings"
)

// Order is one product line of a shipment awaiting dispatch.
// A posting with several products produces several orders sharing a tracking number.
type Order struct {
	Shop           string `json:"shop"`
	OrderDate      string `json:"order_date"`
	PostingNumber  string `json:"posting_number"`
	SKU            string `json:"offer_id"`
	ProductName    string `json:"name"`
	Quantity       int    `json:"quantity"`
	TrackingNumber string `json:"tracking_number"`
	Warehouse      string `json:"warehouse"`
}

// LastDigits returns the last four characters of the tracking number.
// Couriers print them large on the label, so the queue is sorted by them.
func (o Order) LastDigits() string {
	tn := []rune(o.TrackingNumber)
	if len(tn) <= 4 {
		return string(tn)
	}
	return string(tn[len(tn)-4:])
}

// Values returns the displayed cell values in OrderColumns order
func (o Order) Values() []string {
	return []string{
		o.Shop,
		o.OrderDate,
		o.PostingNumber,
		o.SKU,
		o.ProductName,
		strconv.Itoa(o.Quantity),
		o.TrackingNumber,
		o.Warehouse,
		o.LastDigits(),
	}
}

// Column describes one displayed table column
type Column struct {
	Key     string   // Stable identifier used in config
	Label   string   // Header text, also the canonical filter binding
	Aliases []string // Alternative header texts accepted on import
	Width   int      // Preferred render width
}

// Column keys
const (
	ColumnShop       = "shop"
	ColumnOrderDate  = "order_date"
	ColumnPosting    = "posting_number"
	ColumnSKU        = "sku"
	ColumnProduct    = "product"
	ColumnQuantity   = "quantity"
	ColumnTracking   = "tracking_number"
	ColumnWarehouse  = "warehouse"
	ColumnLastDigits = "last_digits"
)

// OrderColumns is the fixed column layout of the order table.
// Aliases include the headers of workbooks exported by the web version.
var OrderColumns = []Column{
	{Key: ColumnShop, Label: "Shop", Aliases: []string{"Магазин"}, Width: 12},
	{Key: ColumnOrderDate, Label: "Order Date", Aliases: []string{"Дата заказа", "Date"}, Width: 10},
	{Key: ColumnPosting, Label: "Posting", Aliases: []string{"Номер отправления", "Posting Number"}, Width: 18},
	{Key: ColumnSKU, Label: "SKU", Aliases: []string{"Артикул", "Offer ID"}, Width: 14},
	{Key: ColumnProduct, Label: "Product", Aliases: []string{"Наименование товара", "Name"}, Width: 30},
	{Key: ColumnQuantity, Label: "Qty", Aliases: []string{"Количество", "Quantity"}, Width: 4},
	{Key: ColumnTracking, Label: "Tracking", Aliases: []string{"Трек-номер", "Tracking Number"}, Width: 16},
	{Key: ColumnWarehouse, Label: "Warehouse", Aliases: []string{"Склад"}, Width: 12},
	{Key: ColumnLastDigits, Label: "Last 4", Aliases: []string{"4 Большие цифры"}, Width: 6},
}

// ColumnLabels returns the header labels of OrderColumns
func ColumnLabels() []string {
	labels := make([]string, len(OrderColumns))
	for i, c := range OrderColumns {
		labels[i] = c.Label
	}
	return labels
}

// ColumnByKey returns the column with the given key
func ColumnByKey(key string) (Column, bool) {
	for _, c := range OrderColumns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// DownloadStatus restricts the table to rows with or without a requested label
type DownloadStatus string

const (
	DownloadAny           DownloadStatus = "any"
	DownloadDownloaded    DownloadStatus = "downloaded"
	DownloadNotDownloaded DownloadStatus = "not_downloaded"
)

// ParseDownloadStatus parses a config or flag value, defaulting to DownloadAny
func ParseDownloadStatus(s string) DownloadStatus {
	switch DownloadStatus(strings.ToLower(strings.TrimSpace(s))) {
	case DownloadDownloaded:
		return DownloadDownloaded
	case DownloadNotDownloaded:
		return DownloadNotDownloaded
	default:
		return DownloadAny
	}
}

// Next cycles any -> downloaded -> not downloaded -> any
func (s DownloadStatus) Next() DownloadStatus {
	switch s {
	case DownloadAny:
		return DownloadDownloaded
	case DownloadDownloaded:
		return DownloadNotDownloaded
	default:
		return DownloadAny
	}
}

// String returns the display name for the status
func (s DownloadStatus) String() string {
	switch s {
	case DownloadDownloaded:
		return "Downloaded"
	case DownloadNotDownloaded:
		return "Not downloaded"
	default:
		return "All"
	}
}

// TrackingSet is a set of tracking numbers
type TrackingSet map[string]struct{}

// NewTrackingSet builds a set from the given numbers, skipping empty ones
func NewTrackingSet(numbers ...string) TrackingSet {
	s := make(TrackingSet, len(numbers))
	for _, n := range numbers {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether n is in the set. Empty numbers are never members.
func (s TrackingSet) Contains(n string) bool {
	if n == "" {
		return false
	}
	_, ok := s[n]
	return ok
}

// Len returns the number of tracking numbers in the set
func (s TrackingSet) Len() int {
	return len(s)
}
