package models

import "time"

// Draw is one historical Lotto 6/45 result. Rows are insert-only; the six
// main numbers are stored ascending.
type Draw struct {
	DrawNo       int       `gorm:"primaryKey;autoIncrement:false;comment:draw number"`
	Date         string    `gorm:"type:varchar(10);comment:draw date YYYY-MM-DD"`
	Num1         int       `gorm:"not null"`
	Num2         int       `gorm:"not null"`
	Num3         int       `gorm:"not null"`
	Num4         int       `gorm:"not null"`
	Num5         int       `gorm:"not null"`
	Num6         int       `gorm:"not null"`
	Bonus        int       `gorm:"not null"`
	PrizeAmount  int64     `gorm:"not null;default:0;comment:first prize amount per winner"`
	WinnersCount int64     `gorm:"not null;default:0;comment:first prize winner count"`
	TotalSales   int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Draw) TableName() string {
	return "draws"
}

func (d Draw) Numbers() []int {
	return []int{d.Num1, d.Num2, d.Num3, d.Num4, d.Num5, d.Num6}
}
