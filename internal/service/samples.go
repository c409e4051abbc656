package service

import (
	"time"

	"nuoitoi/internal/domain"
	"nuoitoi/internal/models"
)

func sampleDonations(now time.Time) []models.Donation {
	msg := func(s string) *string { return &s }
	return []models.Donation{
		{ID: "1", Name: "Anh T***", Amount: 100000, Message: msg("Cố lên nhé!"), Verified: true, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "2", Name: "Chị H***", Amount: 50000, Message: msg("Ủng hộ minh bạch!"), Verified: true, CreatedAt: now.Add(-5 * time.Minute)},
		{ID: "3", Name: domain.AnonymousName, Amount: 20000, Verified: true, CreatedAt: now.Add(-10 * time.Minute)},
		{ID: "4", Name: "Bạn N***", Amount: 200000, Message: msg("Sao kê đi nhé!"), Verified: true, CreatedAt: now.Add(-15 * time.Minute)},
		{ID: "5", Name: domain.AnonymousName, Amount: 50000, Message: msg("Mua mì tôm đi!"), Verified: true, CreatedAt: now.Add(-20 * time.Minute)},
	}
}

func defaultExpenses() []ExpenseView {
	return []ExpenseView{
		{ID: "food", Percentage: 40, Label: "Ăn uống", Description: "Cơm, mì tôm, trứng, rau. KHÔNG có tôm hùm!", Color: "bg-pink-500", ChartColor: "#ec4899", Spent: 980000, Budget: 4000000},
		{ID: "utilities", Percentage: 20, Label: "Điện nước internet", Description: "Để sao kê cho anh chị", Color: "bg-purple-500", ChartColor: "#a855f7", Spent: 450000, Budget: 2000000},
		{ID: "rent", Percentage: 15, Label: "Thuê nhà", Description: "Phòng trọ 15m², không phải penthouse", Color: "bg-blue-500", ChartColor: "#3b82f6", Spent: 1500000, Budget: 1500000},
		{ID: "health", Percentage: 10, Label: "Y tế", Description: "Thuốc cảm, vitamin C, khẩu trang", Color: "bg-green-500", ChartColor: "#22c55e", Spent: 120000, Budget: 1000000},
		{ID: "learning", Percentage: 10, Label: "Học tập nâng cao", Description: "Sách, khóa học online để sao kê tốt hơn", Color: "bg-yellow-500", ChartColor: "#eab308", Spent: 200000, Budget: 1000000},
		{ID: "entertainment", Percentage: 5, Label: "Giải trí", Description: "Netflix? Không! Chỉ Youtube miễn phí thôi!", Color: "bg-orange-500", ChartColor: "#f97316", Spent: 50000, Budget: 500000},
	}
}
