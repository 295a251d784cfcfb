package lotto

import (
	"errors"
	"testing"
)

func TestNormalize_SortsNumbers(t *testing.T) {
	rec, err := Normalize(DrawInput{DrawNo: 1100, Date: "20231230", Numbers: []int{44, 3, 17, 9, 31, 20}, Bonus: 5})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := []int{3, 9, 17, 20, 31, 44}
	for i := range want {
		if rec.Numbers[i] != want[i] {
			t.Fatalf("numbers=%v want=%v", rec.Numbers, want)
		}
	}
	if rec.Date != "2023-12-30" {
		t.Fatalf("date=%q want=2023-12-30", rec.Date)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   DrawInput
	}{
		{"zero draw", DrawInput{DrawNo: 0, Numbers: []int{1, 2, 3, 4, 5, 6}, Bonus: 7}},
		{"five numbers", DrawInput{DrawNo: 1, Numbers: []int{1, 2, 3, 4, 5}, Bonus: 7}},
		{"seven numbers", DrawInput{DrawNo: 1, Numbers: []int{1, 2, 3, 4, 5, 6, 8}, Bonus: 7}},
		{"duplicate", DrawInput{DrawNo: 1, Numbers: []int{1, 1, 3, 4, 5, 6}, Bonus: 7}},
		{"out of range high", DrawInput{DrawNo: 1, Numbers: []int{1, 2, 3, 4, 5, 46}, Bonus: 7}},
		{"out of range low", DrawInput{DrawNo: 1, Numbers: []int{0, 2, 3, 4, 5, 6}, Bonus: 7}},
		{"bonus range", DrawInput{DrawNo: 1, Numbers: []int{1, 2, 3, 4, 5, 6}, Bonus: 46}},
		{"bonus repeats", DrawInput{DrawNo: 1, Numbers: []int{1, 2, 3, 4, 5, 6}, Bonus: 6}},
		{"bad date", DrawInput{DrawNo: 1, Date: "yesterday", Numbers: []int{1, 2, 3, 4, 5, 6}, Bonus: 7}},
	}
	for _, tt := range tests {
		_, err := Normalize(tt.in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: err=%v want ValidationError", tt.name, err)
		}
		if verr.DrawNo != tt.in.DrawNo {
			t.Fatalf("%s: draw_no=%d want=%d", tt.name, verr.DrawNo, tt.in.DrawNo)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := DrawInput{DrawNo: 2, Numbers: []int{6, 5, 4, 3, 2, 1}, Bonus: 7}
	if _, err := Normalize(in); err != nil {
		t.Fatalf("err=%v", err)
	}
	if in.Numbers[0] != 6 {
		t.Fatalf("input slice was sorted in place: %v", in.Numbers)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2002-12-07", "2002-12-07"},
		{"20021207", "2002-12-07"},
		{"2002-12-07T20:45:00+09:00", "2002-12-07"},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("NormalizeDate(%q)=%q err=%v want=%q", tt.in, got, err, tt.want)
		}
	}
}

func TestSortDesc(t *testing.T) {
	records := []DrawRecord{{DrawNo: 1}, {DrawNo: 3}, {DrawNo: 2}}
	SortDesc(records)
	if records[0].DrawNo != 3 || records[2].DrawNo != 1 {
		t.Fatalf("order=%v", records)
	}
}
