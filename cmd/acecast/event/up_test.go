package event

import (
	"reflect"
	"testing"
)

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "single", input: "1", want: []int{0}},
		{name: "comma separated", input: "1,3,5", want: []int{0, 2, 4}},
		{name: "spaces tolerated", input: " 2 , 4 ", want: []int{1, 3}},
		{name: "trailing comma tolerated", input: "1,2,", want: []int{0, 1}},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "negative rejected", input: "-1", wantErr: true},
		{name: "garbage rejected", input: "1,two", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "only commas rejected", input: ",,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndices(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseIndices(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIndices(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIndices(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
