package pkg

import (
	"testing"
)

// 测试内容：生成的 access token 能解析出原始声明。
func TestGenerateAndParse(t *testing.T) {
	pair, err := GeneratePair(42, 2)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	claims, err := ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UserID != 42 || claims.SiteRole != 2 {
		t.Fatalf("声明错位: %+v", claims)
	}
}

// 测试内容：refresh token 不能当 access token 用（密钥不同）。
func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	pair, err := GeneratePair(1, 1)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := ParseAccess(pair.RefreshToken); err == nil {
		t.Fatal("refresh token 不应通过 access 校验")
	}
}

// 测试内容：refresh 换发新令牌对，新 access 携带原声明。
func TestRefreshPair(t *testing.T) {
	pair, err := GeneratePair(7, 3)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	fresh, err := RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshPair: %v", err)
	}
	claims, err := ParseAccess(fresh.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.UserID != 7 || claims.SiteRole != 3 {
		t.Fatalf("换发后声明错位: %+v", claims)
	}
}

// 测试内容：篡改过的 token 被拒绝。
func TestParseAccess_Tampered(t *testing.T) {
	pair, _ := GeneratePair(1, 1)
	tampered := pair.AccessToken[:len(pair.AccessToken)-4] + "AAAA"
	if _, err := ParseAccess(tampered); err == nil {
		t.Fatal("篡改 token 不应通过校验")
	}
}
