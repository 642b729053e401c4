package youtube

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestGetToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	// Any attempt to start the device flow fails fast against this server.
	deviceServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusBadRequest)
	}))
	defer deviceServer.Close()

	oauthConfig := &oauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Endpoint: oauth2.Endpoint{
			TokenURL:      deviceServer.URL + "/token",
			DeviceAuthURL: deviceServer.URL + "/device",
		},
	}

	t.Run("LoadExistingValidToken", func(t *testing.T) {
		validToken := &oauth2.Token{
			AccessToken:  "valid-access-token",
			RefreshToken: "valid-refresh-token",
			Expiry:       time.Now().Add(time.Hour),
		}
		if err := saveToken(tokenFile, validToken); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		token, err := getToken(oauthConfig, tokenFile)
		if err != nil {
			t.Fatalf("Failed to get token: %v", err)
		}
		if token.AccessToken != validToken.AccessToken {
			t.Errorf("Access token mismatch: got %s, want %s", token.AccessToken, validToken.AccessToken)
		}
	})

	t.Run("LoadExpiredTokenWithRefresh", func(t *testing.T) {
		expiredToken := &oauth2.Token{
			AccessToken:  "expired-access-token",
			RefreshToken: "valid-refresh-token",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := saveToken(tokenFile, expiredToken); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		token, err := getToken(oauthConfig, tokenFile)
		if err != nil {
			t.Fatalf("Failed to get token: %v", err)
		}
		if token.RefreshToken != expiredToken.RefreshToken {
			t.Errorf("Refresh token mismatch: got %s, want %s", token.RefreshToken, expiredToken.RefreshToken)
		}
	})

	t.Run("ExpiredTokenWithoutRefreshStartsDeviceFlow", func(t *testing.T) {
		if err := saveToken(tokenFile, &oauth2.Token{
			AccessToken: "stale",
			Expiry:      time.Now().Add(-time.Hour),
		}); err != nil {
			t.Fatalf("Failed to save token: %v", err)
		}

		if _, err := getToken(oauthConfig, tokenFile); err == nil {
			t.Error("Expected device authorization error")
		}
	})

	t.Run("NoTokenFile", func(t *testing.T) {
		os.Remove(tokenFile)

		if _, err := getToken(oauthConfig, tokenFile); err == nil {
			t.Error("Expected error when no token file exists and device flow fails")
		}
	})
}

func TestTokenSaverPersistsRefreshedToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "refreshed-access-token",
			"token_type":    "Bearer",
			"refresh_token": "refresh",
			"expires_in":    3600,
		})
	}))
	defer tokenServer.Close()

	ts := &tokenSaver{
		config: &oauth2.Config{
			ClientID: "test",
			Endpoint: oauth2.Endpoint{TokenURL: tokenServer.URL},
		},
		token: &oauth2.Token{
			AccessToken:  "expired",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(-time.Hour),
		},
		tokenFile: tokenFile,
	}

	token, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if token.AccessToken != "refreshed-access-token" {
		t.Errorf("AccessToken = %s, want refreshed-access-token", token.AccessToken)
	}

	saved, err := tokenFromFile(tokenFile)
	if err != nil {
		t.Fatalf("refreshed token was not saved: %v", err)
	}
	if saved.AccessToken != "refreshed-access-token" {
		t.Errorf("saved AccessToken = %s", saved.AccessToken)
	}
}

func TestTokenSaverKeepsValidToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	ts := &tokenSaver{
		config: &oauth2.Config{ClientID: "test"},
		token: &oauth2.Token{
			AccessToken: "still-valid",
			Expiry:      time.Now().Add(time.Hour),
		},
		tokenFile: tokenFile,
	}

	token, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if token.AccessToken != "still-valid" {
		t.Errorf("AccessToken = %s", token.AccessToken)
	}
	if _, err := os.Stat(tokenFile); !os.IsNotExist(err) {
		t.Error("unchanged token should not be written")
	}
}

func TestTokenFromFile(t *testing.T) {
	tempDir := t.TempDir()
	tokenFile := filepath.Join(tempDir, "token.json")

	t.Run("ValidTokenFile", func(t *testing.T) {
		testToken := &oauth2.Token{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}
		data, _ := json.Marshal(testToken)
		if err := os.WriteFile(tokenFile, data, 0600); err != nil {
			t.Fatalf("Failed to write token file: %v", err)
		}

		token, err := tokenFromFile(tokenFile)
		if err != nil {
			t.Fatalf("Failed to read token from file: %v", err)
		}
		if token.RefreshToken != testToken.RefreshToken {
			t.Errorf("Refresh token mismatch: got %s, want %s", token.RefreshToken, testToken.RefreshToken)
		}
	})

	t.Run("NonExistentFile", func(t *testing.T) {
		if _, err := tokenFromFile(filepath.Join(tempDir, "nonexistent.json")); err == nil {
			t.Error("Expected error for non-existent file")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		if err := os.WriteFile(tokenFile, []byte("invalid json"), 0600); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := tokenFromFile(tokenFile); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestSaveTokenNestedDirectory(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "nested"}); err != nil {
		t.Fatalf("Failed to save token to nested directory: %v", err)
	}

	info, err := os.Stat(tokenFile)
	if err != nil {
		t.Fatalf("Token file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}
}
