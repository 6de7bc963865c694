package helpers

import (
	"testing"

	"bitbucket.org/konstbyte/backend/models"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("trädgård123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hashed == "trädgård123" {
		t.Fatal("expected hashed password to differ from input")
	}
	if !AuthenticateHashedPassword(hashed, "trädgård123") {
		t.Fatal("expected password to authenticate against its own hash")
	}
	if AuthenticateHashedPassword(hashed, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestGenerateTokenClaims(t *testing.T) {
	user := &models.User{
		ID:        7,
		Email:     "buyer@example.com",
		Firstname: "Anna",
		Lastname:  "Lind",
		Roles:     []models.Role{{ID: 3, Name: "client"}},
	}

	token, err := GenerateToken(user, "secret")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, ok := ParserTokenUnverified(token)
	if !ok {
		t.Fatal("expected token to parse")
	}
	u, ok := claims["u"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user claims")
	}
	if u["email"] != "buyer@example.com" {
		t.Fatalf("unexpected email claim %v", u["email"])
	}
	if claims["exp"] == nil {
		t.Fatal("expected expiry claim")
	}
}

func TestRemoveAccents(t *testing.T) {
	tests := map[string]string{
		"Skogen om natten": "Skogen om natten",
		"trädgård":         "tradgard",
		"Göteborg åäö":     "Goteborg aao",
	}
	for input, want := range tests {
		if got := RemoveAccents(input); got != want {
			t.Errorf("RemoveAccents(%q) = %q, expected %q", input, got, want)
		}
	}
}

func TestContains(t *testing.T) {
	if !Contains([]int{1, 2, 3}, 2) {
		t.Fatal("expected 2 to be found")
	}
	if Contains([]int{1, 2, 3}, 4) {
		t.Fatal("expected 4 to be missing")
	}
	if Contains(nil, 1) {
		t.Fatal("expected nothing in an empty slice")
	}
}
