package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	u := User{ID: 1, Name: "Ada", Email: "ada@x.io", PasswordHash: "$2a$10$secret"}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") {
		t.Errorf("password hash leaked into JSON: %s", b)
	}
}

func TestExperience_IsCurrent(t *testing.T) {
	e := Experience{StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	if !e.IsCurrent() {
		t.Error("expected experience without end date to be current")
	}

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.EndDate = &end
	if e.IsCurrent() {
		t.Error("expected experience with end date not to be current")
	}
}
