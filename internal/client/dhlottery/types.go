package dhlottery

import (
	"fmt"

	"github.com/tidwall/gjson"

	"klotto/internal/lotto"
)

type Draw struct {
	DrawNo       int    `json:"draw_no"`
	Date         string `json:"date"`
	Numbers      []int  `json:"numbers"`
	Bonus        int    `json:"bonus"`
	PrizeAmount  int64  `json:"prize_amount"`
	WinnersCount int64  `json:"winners_count"`
	TotalSales   int64  `json:"total_sales"`
}

func (d Draw) Input() lotto.DrawInput {
	nums := make([]int, len(d.Numbers))
	copy(nums, d.Numbers)
	return lotto.DrawInput{
		DrawNo:       d.DrawNo,
		Date:         d.Date,
		Numbers:      nums,
		Bonus:        d.Bonus,
		PrizeAmount:  d.PrizeAmount,
		WinnersCount: d.WinnersCount,
		TotalSales:   d.TotalSales,
	}
}

var numberFields = []string{"tm1WnNo", "tm2WnNo", "tm3WnNo", "tm4WnNo", "tm5WnNo", "tm6WnNo"}

// parseDraw reads the first entry of data.list. Values may arrive as numbers
// or numeric strings.
func parseDraw(body []byte) (*Draw, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrNotJSON
	}
	root := gjson.ParseBytes(body)
	list := root.Get("data.list")
	if !list.IsArray() || len(list.Array()) == 0 {
		return nil, ErrDrawNotFound
	}
	item := list.Get("0")

	drawNo := item.Get("ltEpsd")
	if !drawNo.Exists() || drawNo.Int() <= 0 {
		return nil, fmt.Errorf("%w: missing ltEpsd", ErrMalformedPayload)
	}

	numbers := make([]int, 0, len(numberFields))
	for _, field := range numberFields {
		v := item.Get(field)
		if !v.Exists() {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedPayload, field)
		}
		numbers = append(numbers, int(v.Int()))
	}
	bonus := item.Get("bnsWnNo")
	if !bonus.Exists() {
		return nil, fmt.Errorf("%w: missing bnsWnNo", ErrMalformedPayload)
	}

	return &Draw{
		DrawNo:       int(drawNo.Int()),
		Date:         formatDate(item.Get("ltRflYmd").String()),
		Numbers:      numbers,
		Bonus:        int(bonus.Int()),
		PrizeAmount:  item.Get("rnk1WnAmt").Int(),
		WinnersCount: item.Get("rnk1WnNope").Int(),
		TotalSales:   item.Get("rlvtEpsdSumNtslAmt").Int(),
	}, nil
}

// formatDate turns 20260103 into 2026-01-03 and leaves anything else alone.
func formatDate(raw string) string {
	if len(raw) == 8 {
		return raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
	}
	return raw
}
