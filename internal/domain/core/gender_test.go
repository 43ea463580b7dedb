package core

import "testing"

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{in: "male", want: GenderMale},
		{in: "M", want: GenderMale},
		{in: " Female ", want: GenderFemale},
		{in: "f", want: GenderFemale},
		{in: "OTHER", want: GenderOther},
		{in: "o", want: GenderOther},
		{in: "", wantErr: true},
		{in: "unknown", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseGender(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
