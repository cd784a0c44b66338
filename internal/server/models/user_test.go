package models

import (
	"testing"
	"time"
)

func TestHasActiveRefreshToken(t *testing.T) {
	hash := "digest"
	exp := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"empty slot", User{}, false},
		{"hash without expiry", User{RefreshTokenHash: &hash}, false},
		{"expiry without hash", User{RefreshTokenExpiresAt: &exp}, false},
		{"populated slot", User{RefreshTokenHash: &hash, RefreshTokenExpiresAt: &exp}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasActiveRefreshToken(); got != tt.want {
				t.Fatalf("HasActiveRefreshToken() = %v, want %v", got, tt.want)
			}
		})
	}
}
