package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Price
		wantErr bool
	}{
		{"integer", "5", 500, false},
		{"one decimal", "5.5", 550, false},
		{"two decimals", "5.05", 505, false},
		{"zero", "0", 0, false},
		{"leading dot", ".25", 25, false},
		{"surrounding space", " 12.00 ", 1200, false},
		{"empty", "", 0, true},
		{"negative", "-1.00", 0, true},
		{"three decimals", "1.005", 0, true},
		{"trailing dot", "1.", 0, true},
		{"letters", "abc", 0, true},
		{"exponent", "5e2", 0, true},
		{"largest accepted", "999.99", MaxPriceCents, false},
		{"just above max", "1000.00", 100000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPrice) {
					t.Fatalf("ParsePrice(%q) error = %v, want ErrInvalidPrice", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePrice_HugeAmountsExceedMax(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"92233720368547758.99",
		"92233720368547758",
		"99999999999999999999999",
		"1000000.5",
	} {
		got, err := ParsePrice(in)
		if err != nil {
			t.Fatalf("ParsePrice(%q) unexpected error: %v", in, err)
		}
		if got <= MaxPriceCents {
			t.Errorf("ParsePrice(%q) = %d, want above %d", in, got, MaxPriceCents)
		}
	}
}

func TestPrice_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price Price
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{500, "5.00"},
		{12345, "123.45"},
	}

	for _, tt := range tests {
		if got := tt.price.String(); got != tt.want {
			t.Errorf("Price(%d).String() = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestPrice_JSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		Price Price `json:"price"`
	}

	if err := json.Unmarshal([]byte(`{"price": 5.5}`), &payload); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if payload.Price != 550 {
		t.Errorf("Price = %d, want 550", payload.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": "7.25"}`), &payload); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if payload.Price != 725 {
		t.Errorf("Price = %d, want 725", payload.Price)
	}

	if err := json.Unmarshal([]byte(`{"price": -1}`), &payload); err == nil {
		t.Error("expected error for negative price")
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"price":"7.25"}` {
		t.Errorf("marshal = %s, want {\"price\":\"7.25\"}", out)
	}
}

func TestRecipe_JSONFieldNames(t *testing.T) {
	t.Parallel()

	recipe := Recipe{
		ID:            "01HRECIPE",
		Title:         "Soup",
		IngredientIDs: []string{"i1"},
		TagIDs:        []string{"t1", "t2"},
		TimeMinutes:   10,
		Price:         500,
		OwnerID:       "owner",
	}

	out, err := json.Marshal(recipe)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "title", "ingredient", "tags", "time_minutes", "price", "link"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, out)
		}
	}
	if _, ok := fields["owner_id"]; ok {
		t.Error("owner must not be serialized")
	}
}

func TestUser_ToResponseOmitsPassword(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Email: "test@example.com", Name: "Name", PasswordHash: "$argon2id$secret"}

	out, err := json.Marshal(u.ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"email":"test@example.com","name":"Name"}` {
		t.Errorf("response = %s", out)
	}

	full, _ := json.Marshal(u)
	var fields map[string]any
	_ = json.Unmarshal(full, &fields)
	if _, ok := fields["password_hash"]; ok {
		t.Error("password hash must never be serialized")
	}
}

func TestUser_AuthContext(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Email: "a@b.com", IsStaff: true}
	ac := u.AuthContext("digest")

	if ac.UserID != "u1" || ac.Email != "a@b.com" || !ac.IsStaff || ac.TokenRef != "digest" {
		t.Errorf("unexpected auth context: %+v", ac)
	}
}
