package domain

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusExpired   = "EXPIRED"
)

// WebhookCodeSuccess is the provider code for a settled transfer.
const WebhookCodeSuccess = "00"

const (
	MinDonationAmount  int64 = 2000
	MonthlyGoal        int64 = 10000000
	AnonymousName            = "Ẩn danh"
	MaxNameLength            = 100
	MaxMessageLength         = 500
	DescriptionMaxLen        = 25
	DescriptionPrefix        = "NUOITOI"
	DefaultRecentLimit       = 20
	MaxRecentLimit           = 100
)

// User-facing messages.
const (
	MsgMinAmount        = "Số tiền tối thiểu là 2.000đ"
	MsgCreatePaymentErr = "Không thể tạo thanh toán. Vui lòng thử lại."
	MsgStatusErr        = "Không thể kiểm tra trạng thái thanh toán"
	MsgRecordErr        = "Không thể ghi nhận donation"
	MsgInvalidOrderCode = "Invalid order code"
)

// IsTerminalStatus reports whether a payment status ends the confirmation flow.
func IsTerminalStatus(status string) bool {
	switch status {
	case PaymentStatusPaid, PaymentStatusCancelled, PaymentStatusExpired:
		return true
	}
	return false
}
