package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
)

var tokenCfg = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "dailyfish",
	ExpirationMinutes: 30,
}

func mustMint(t *testing.T, cfg config.JWTConfig, payload AccessTokenPayload) string {
	t.Helper()
	token, err := MintAccessToken(cfg, time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	return token
}

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()

	token, err := MintAccessToken(tokenCfg, now, AccessTokenPayload{UserID: userID, Role: enums.UserRoleBuyer})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(tokenCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("user_id = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enums.UserRoleBuyer {
		t.Fatalf("role = %s, want buyer", claims.Role)
	}
	if claims.Issuer != tokenCfg.Issuer {
		t.Fatalf("issuer = %s, want %s", claims.Issuer, tokenCfg.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("a jti should be generated when the payload omits one")
	}

	wantExp := now.Add(30 * time.Minute)
	if drift := claims.ExpiresAt.Sub(wantExp); drift < -time.Second || drift > time.Second {
		t.Fatalf("exp = %v, want about %v", claims.ExpiresAt.UTC(), wantExp)
	}
}

func TestMintAccessTokenKeepsSuppliedJTI(t *testing.T) {
	jti := uuid.NewString()
	token := mustMint(t, tokenCfg, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin, JTI: jti})

	claims, err := ParseAccessToken(tokenCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.ID != jti {
		t.Fatalf("jti = %s, want %s", claims.ID, jti)
	}
}

func TestMintAccessTokenRejectsUnknownRole(t *testing.T) {
	_, err := MintAccessToken(tokenCfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRole("fishmonger"),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid user role") {
		t.Fatalf("err = %v, want invalid role error", err)
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	token := mustMint(t, tokenCfg, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleSeller})

	wrongSecret := tokenCfg
	wrongSecret.Secret = "different"
	if _, err := ParseAccessToken(wrongSecret, token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}

	wrongIssuer := tokenCfg
	wrongIssuer.Issuer = "someone-else"
	if _, err := ParseAccessToken(wrongIssuer, token); err == nil {
		t.Fatal("token from another issuer must not parse")
	}
}
