package util

import (
	"testing"
	"time"

	"readaloud_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	email := "teacher@example.com"
	profile := &model.Profile{
		UUIDBase: model.UUIDBase{ID: "t-1"},
		Email:    &email,
		Role:     model.Teacher,
	}

	token, err := GenerateJWT(profile, "test-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.ProfileID != "t-1" || claims.Role != model.Teacher || claims.Email != email {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	profile := &model.Profile{UUIDBase: model.UUIDBase{ID: "t-1"}, Role: model.Teacher}

	token, err := GenerateJWT(profile, "secret-a-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseJWT(token, "secret-b-0123456789abcdef"); err == nil {
		t.Fatal("wrong secret must not verify")
	}
}

func TestJWTExpired(t *testing.T) {
	profile := &model.Profile{UUIDBase: model.UUIDBase{ID: "t-1"}, Role: model.Teacher}

	token, err := GenerateJWT(profile, "test-secret-0123456789abcdef", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseJWT(token, "test-secret-0123456789abcdef"); err == nil {
		t.Fatal("expired token must not verify")
	}
}
