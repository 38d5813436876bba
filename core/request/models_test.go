package request

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"OPEN", StatusOpen, true},
		{"open", StatusOpen, true},
		{" open ", StatusOpen, true},
		{"PENDING", StatusOpen, true},
		{"pending", StatusOpen, true},
		{"IN_PROGRESS", StatusInProgress, true},
		{"CLOSED", StatusClosed, true},
		{"", StatusOpen, true},
		{"REJECTED", StatusOpen, false},
		{"garbage", StatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseStatus(%q): expected (%s, %t), got (%s, %t)", tt.raw, tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestQueryFilterClean(t *testing.T) {
	tests := []struct {
		name string
		in   QueryFilter
		want QueryFilter
	}{
		{"empty filter defaults to open", QueryFilter{}, QueryFilter{Status: StatusOpen, Limit: 200}},
		{"legacy status normalized", QueryFilter{Status: "pending", Limit: 10}, QueryFilter{Status: StatusOpen, Limit: 10}},
		{"unknown status defaults to open", QueryFilter{Status: "BOGUS", Limit: 10}, QueryFilter{Status: StatusOpen, Limit: 10}},
		{"explicit closed kept", QueryFilter{Status: "closed", Limit: 10}, QueryFilter{Status: StatusClosed, Limit: 10}},
		{"limit capped", QueryFilter{Limit: 5000}, QueryFilter{Status: StatusOpen, Limit: 200}},
		{"negative limit reset", QueryFilter{Limit: -1}, QueryFilter{Status: StatusOpen, Limit: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clean(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		nr      NewRequest
		wantErr bool
	}{
		{"valid", NewRequest{Title: "Transcript copy", Description: "Need it for a visa application"}, false},
		{"valid without description", NewRequest{Title: "Bonafide certificate"}, false},
		{"missing title", NewRequest{Description: "please"}, true},
		{"title too short", NewRequest{Title: "x"}, true},
		{"whitespace-only title", NewRequest{Title: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%t, got %v", tt.wantErr, err)
			}
		})
	}
}
