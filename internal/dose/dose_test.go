package dose

import "testing"

func TestEstimate_Inhaled(t *testing.T) {
	// 4 puffs at 80% potency: 4 * 0.8 * 2.5 = 8.0 mg
	for _, method := range []string{MethodVape, MethodSmoke} {
		got := Estimate(method, 4, 80, 0)
		if got != 8.0 {
			t.Errorf("Estimate(%q, 4, 80, 0) = %v, want 8.0", method, got)
		}
	}
}

func TestEstimate_Ingested(t *testing.T) {
	// Edibles and tinctures take the amount as milligrams directly.
	// puffs and thc_percent must be ignored even when set.
	for _, method := range []string{MethodEdible, MethodTincture} {
		got := Estimate(method, 4, 80, 10)
		if got != 10.0 {
			t.Errorf("Estimate(%q, 4, 80, 10) = %v, want 10.0", method, got)
		}
	}
}

func TestEstimate_UnknownMethod(t *testing.T) {
	for _, method := range []string{"", "dab", "topical", "VAPE"} {
		got := Estimate(method, 4, 80, 10)
		if got != 0 {
			t.Errorf("Estimate(%q, ...) = %v, want 0", method, got)
		}
	}
}

func TestEstimate_DefaultPotency(t *testing.T) {
	// 2 puffs at the default 75%: 2 * 0.75 * 2.5 = 3.75 mg.
	// The caller substitutes DefaultTHCPercent when the field is absent.
	got := Estimate(MethodVape, 2, DefaultTHCPercent, 0)
	if got != 3.75 {
		t.Errorf("Estimate(vape, 2, default, 0) = %v, want 3.75", got)
	}
}

func TestEstimate_ZeroPuffs(t *testing.T) {
	if got := Estimate(MethodSmoke, 0, 90, 0); got != 0 {
		t.Errorf("Estimate(smoke, 0, 90, 0) = %v, want 0", got)
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"0", 0, false},
		{"4", 4, false},
		{"2.5", 2.5, false},
		{" 10 ", 10, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseQuantity(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuantity(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseQuantity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
