package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/types"
)

// Money leaves the API as a decimal string alongside the raw cent amount.
type moneyView struct {
	Amount string `json:"amount"`
	Cents  int64  `json:"cents"`
}

func money(cents int64) moneyView {
	return moneyView{
		Amount: decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2),
		Cents:  cents,
	}
}

type lineItemView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice moneyView `json:"unit_price"`
	Qty       int       `json:"qty"`
	Total     moneyView `json:"total"`
}

type timelineEventView struct {
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type orderView struct {
	ID                     uuid.UUID            `json:"id"`
	OrderNumber            string               `json:"order_number"`
	CustomerID             uuid.UUID            `json:"customer_id"`
	SellerID               uuid.UUID            `json:"seller_id"`
	Status                 enums.OrderStatus    `json:"status"`
	PaymentMethod          enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus          enums.PaymentStatus  `json:"payment_status"`
	Currency               enums.Currency       `json:"currency"`
	Subtotal               moneyView            `json:"subtotal"`
	DeliveryFee            moneyView            `json:"delivery_fee"`
	Total                  moneyView            `json:"total"`
	DeliveryAddress        *types.Address       `json:"delivery_address,omitempty"`
	StoreDetails           *types.StoreSnapshot `json:"store_details,omitempty"`
	QRCodeURL              *string              `json:"qr_code_url,omitempty"`
	GatewayOrderRef        *string              `json:"gateway_order_ref,omitempty"`
	SellerApprovalDeadline time.Time            `json:"seller_approval_deadline"`
	PlacedAt               time.Time            `json:"placed_at"`
	DeliveredAt            *time.Time           `json:"delivered_at,omitempty"`
	CancelledAt            *time.Time           `json:"cancelled_at,omitempty"`
	Items                  []lineItemView       `json:"items,omitempty"`
	Timeline               []timelineEventView  `json:"timeline,omitempty"`
}

// The raw delivery code never leaves through the API; customers receive it
// via the QR code URL and the notification channel.
func orderToView(order *models.Order, includeItems bool) orderView {
	view := orderView{
		ID:                     order.ID,
		OrderNumber:            order.OrderNumber,
		CustomerID:             order.CustomerID,
		SellerID:               order.SellerID,
		Status:                 order.Status,
		PaymentMethod:          order.PaymentMethod,
		PaymentStatus:          order.PaymentStatus,
		Currency:               order.Currency,
		Subtotal:               money(order.SubtotalCents),
		DeliveryFee:            money(order.DeliveryFeeCents),
		Total:                  money(order.TotalCents),
		DeliveryAddress:        order.DeliveryAddress,
		StoreDetails:           order.StoreDetails,
		QRCodeURL:              order.QRCodeURL,
		GatewayOrderRef:        order.GatewayOrderRef,
		SellerApprovalDeadline: order.SellerApprovalDeadline,
		PlacedAt:               order.PlacedAt,
		DeliveredAt:            order.DeliveredAt,
		CancelledAt:            order.CancelledAt,
	}
	if !includeItems {
		return view
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, lineItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: money(item.UnitPriceCents),
			Qty:       item.Qty,
			Total:     money(item.TotalCents),
		})
	}
	for _, event := range order.StatusEvents {
		view.Timeline = append(view.Timeline, timelineEventView{
			Label:     event.Label,
			CreatedAt: event.CreatedAt,
		})
	}
	return view
}

func ordersToViews(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderToView(&orders[i], false))
	}
	return views
}

type walletView struct {
	AccountID uuid.UUID `json:"account_id"`
	Balance   moneyView `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type walletTransactionView struct {
	ID          uuid.UUID                     `json:"id"`
	Type        enums.WalletTransactionType   `json:"type"`
	Amount      moneyView                     `json:"amount"`
	Description string                        `json:"description"`
	Reference   string                        `json:"reference"`
	Status      enums.WalletTransactionStatus `json:"status"`
	CreatedAt   time.Time                     `json:"created_at"`
}

func walletToView(wallet *models.Wallet) walletView {
	return walletView{
		AccountID: wallet.AccountID,
		Balance:   money(wallet.BalanceCents),
		UpdatedAt: wallet.UpdatedAt,
	}
}

func transactionsToViews(entries []models.WalletTransaction) []walletTransactionView {
	views := make([]walletTransactionView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, walletTransactionView{
			ID:          entry.ID,
			Type:        entry.Type,
			Amount:      money(entry.AmountCents),
			Description: entry.Description,
			Reference:   entry.Reference,
			Status:      entry.Status,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return views
}
