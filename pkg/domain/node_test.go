package domain

import "testing"

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple", "Revenue", "revenue"},
		{"Spaces To Underscore", "Cost of Goods Sold", "cost_of_goods_sold"},
		{"Case Folded", "NET Profit", "net_profit"},
		{"Collapses Runs", "a   b\t c", "a_b_c"},
		{"Trims Edges", "  Payroll  ", "payroll"},
		{"Unicode", "Café Bar", "café_bar"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveID(tt.in); got != tt.want {
				t.Errorf("DeriveID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinkValidate(t *testing.T) {
	valid := Link{Source: "a", Target: "b", Value: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid link rejected: %v", err)
	}

	bad := []Link{
		{Source: "a", Target: "a", Value: 1},
		{Source: "a", Target: "b", Value: 0},
		{Source: "a", Target: "b", Value: -5},
		{Source: "", Target: "b", Value: 1},
	}
	for i, l := range bad {
		if err := l.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, l)
		}
	}
}
